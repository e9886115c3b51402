// Package telemetry wires OpenTelemetry tracing. With tracing disabled the
// global provider stays the no-op one, so spans cost nothing.
package telemetry

import (
	"context"
	"fmt"

	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationPrefix = "github.com/angelmondragon/opspulse-backend/"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs an OTLP/gRPC tracer provider when cfg.Enabled is set.
func Init(ctx context.Context, cfg config.TelemetryConfig, logg *logger.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		if logg != nil {
			logg.Info(ctx, "telemetry.disabled")
		}
		return noopShutdown, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"endpoint": cfg.Endpoint,
			"service":  cfg.ServiceName,
		}), "telemetry.initialized")
	}
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}
