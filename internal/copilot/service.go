package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/opspulse-backend/internal/analytics"
	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/internal/anomalies"
	"github.com/angelmondragon/opspulse-backend/internal/forecast"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/metrics"
	"github.com/angelmondragon/opspulse-backend/pkg/openai"
	"github.com/angelmondragon/opspulse-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxQueryLen            = 600
	DefaultMaxOutputTokens = 700
	DefaultModelTimeout    = 25 * time.Second

	ErrorTypeEmptyQuery    = "empty_query"
	ErrorTypeQueryTooLong  = "query_too_long"
	ErrorTypeDemoMode      = ReasonDemoMode
	ErrorTypeModelError    = ReasonModelError
	ErrorTypeSchemaInvalid = ReasonSchemaInvalid

	attemptInitial = "initial"
	attemptStrict  = "strict"
)

// Analytics is the slice of the analytics service the pipeline reads.
type Analytics interface {
	RevenueSeries(ctx context.Context) types.SeriesResult
	ActivityRows(ctx context.Context, count int) types.ActivityResult
}

// ModelClient produces one structured JSON object per call.
type ModelClient interface {
	CreateStructured(ctx context.Context, req openai.StructuredRequest) (json.RawMessage, error)
}

// Config controls model routing and bounds.
type Config struct {
	CheapModel      string
	QualityModel    string
	MaxOutputTokens int
	ModelTimeout    time.Duration
}

// Request is a parsed copilot question.
type Request struct {
	Query           string
	PromptVersion   string
	ExtraDataPoints []string
}

// Outcome is the delivered response plus what the audit trail records.
// ErrorType is empty for a clean live answer.
type Outcome struct {
	Response   Response
	ModelUsed  string
	ErrorType  string
	SchemaPass bool
}

// Service answers copilot questions.
type Service interface {
	Answer(ctx context.Context, req Request) (*Outcome, error)
}

type service struct {
	cfg       Config
	analytics Analytics
	model     ModelClient
	prompts   *Prompts
	metrics   *metrics.CopilotMetrics
	logg      *logger.Logger
	clock     func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

func WithMetrics(m *metrics.CopilotMetrics) Option {
	return func(s *service) { s.metrics = m }
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *service) { s.logg = logg }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.clock = now
		}
	}
}

// NewService builds the pipeline. A nil model puts it in demo mode: every
// answer comes from the fallback synthesizer.
func NewService(cfg Config, data Analytics, model ModelClient, prompts *Prompts, opts ...Option) (Service, error) {
	if data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "analytics source required")
	}
	if prompts == nil {
		loaded, err := LoadPrompts()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load prompt templates")
		}
		prompts = loaded
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}

	s := &service{cfg: cfg, analytics: data, model: model, prompts: prompts, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ValidateQuery trims the query and enforces its length bounds.
func ValidateQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Query is required.").
			WithDetails(map[string]any{"error_type": ErrorTypeEmptyQuery})
	}
	if utf8.RuneCountInString(q) > MaxQueryLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Query too long (max 600 characters).").
			WithDetails(map[string]any{"error_type": ErrorTypeQueryTooLong})
	}
	return q, nil
}

// Answer runs the pipeline. Model failures and schema failures never surface
// as errors; only internal faults do. The pipeline ignores caller
// cancellation so a disconnect does not abort an in-flight model call.
func (s *service) Answer(ctx context.Context, req Request) (*Outcome, error) {
	ctx = context.WithoutCancel(ctx)
	version := NormalizePromptVersion(req.PromptVersion)
	if s.logg != nil {
		ctx = s.logg.WithPromptVersion(ctx, version)
	}

	ctx, span := telemetry.Tracer("copilot").Start(ctx, "copilot.answer")
	defer span.End()
	span.SetAttributes(attribute.String("copilot.prompt_version", version))

	revenue := s.analytics.RevenueSeries(ctx)
	projected, err := forecast.Build(revenue.Series, analytics.ForecastDays)
	if err != nil {
		return nil, s.fail(span, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build forecast"))
	}
	found := anomalies.Detect(revenue.Series, anomalies.Options{Window: analytics.AnomalyWindow, ZThreshold: analytics.AnomalyZThreshold})
	activityRows := s.analytics.ActivityRows(ctx, analytics.CopilotRows)
	stats := ComputeActivityStats(activityRows.Rows, s.clock())

	dataCtx, err := BuildDataContext(ContextInput{
		Series:          revenue.Series,
		Forecast:        projected,
		Anomalies:       found,
		PromptVersion:   version,
		ExtraDataPoints: req.ExtraDataPoints,
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	fallback := func(reason, modelUsed string, schemaPass bool) *Outcome {
		resp := Synthesize(SynthesisInput{
			Context:        dataCtx,
			Anomalies:      found,
			Activity:       stats,
			ModelEnabled:   s.model != nil,
			PromptVersion:  version,
			FallbackReason: reason,
		})
		s.metrics.IncResponse(resp.Meta.Mode, reason)
		span.SetAttributes(attribute.String("copilot.fallback_reason", reason))
		return &Outcome{Response: resp, ModelUsed: modelUsed, ErrorType: reason, SchemaPass: schemaPass}
	}

	if s.model == nil {
		return fallback(ReasonDemoMode, "", true), nil
	}

	model := ChooseModel(req.Query, s.cfg.CheapModel, s.cfg.QualityModel)
	span.SetAttributes(attribute.String("copilot.model", model))
	system := s.prompts.Get(version).System()
	user := UserMessage(req.Query, dataCtx.DataPoints)

	raw, err := s.call(ctx, model, system, user)
	if err != nil {
		s.warn(ctx, "copilot.model_call_failed", model, err)
		return fallback(ReasonModelError, model, true), nil
	}
	answer, verr := Validate(raw)
	s.metrics.IncSchemaCheck(attemptInitial, verr == nil)

	if verr != nil {
		s.warnInvalid(ctx, attemptInitial, raw, verr)
		raw, err = s.call(ctx, model, SystemWithStrict(system, StrictInstruction), user)
		if err != nil {
			s.warn(ctx, "copilot.model_call_failed", model, err)
			return fallback(ReasonModelError, model, true), nil
		}
		answer, verr = Validate(raw)
		s.metrics.IncSchemaCheck(attemptStrict, verr == nil)
		if verr != nil {
			s.warnInvalid(ctx, attemptStrict, raw, verr)
			return fallback(ReasonSchemaInvalid, model, false), nil
		}
	}

	s.metrics.IncResponse(ModeLive, ReasonNone)
	return &Outcome{
		Response: Response{
			Answer: *answer,
			Meta:   Meta{Mode: ModeLive, FallbackReason: ReasonNone, PromptVersion: version},
		},
		ModelUsed:  model,
		SchemaPass: true,
	}, nil
}

func (s *service) call(ctx context.Context, model, system, user string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ModelTimeout)
	defer cancel()
	ctx, span := telemetry.Tracer("copilot").Start(ctx, "copilot.model_call")
	defer span.End()

	started := s.clock()
	raw, err := s.model.CreateStructured(ctx, openai.StructuredRequest{
		Model:           model,
		System:          system,
		User:            user,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		SchemaName:      SchemaName(),
		Schema:          JSONSchema(),
	})
	s.metrics.ObserveModelCall(model, err != nil, s.clock().Sub(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		return nil, err
	}
	return raw, nil
}

func (s *service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *service) warn(ctx context.Context, msg, model string, err error) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{"model": model, "error": err.Error()}
	var perr *openai.ParseError
	if errors.As(err, &perr) {
		fields["parse_failure"] = perr.Failure.String()
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)
}

func (s *service) warnInvalid(ctx context.Context, attempt string, raw []byte, verr error) {
	if s.logg == nil {
		return
	}
	payload := compactJSON(raw)
	if len(payload) > 512 {
		payload = payload[:512]
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"attempt": attempt,
		"error":   verr.Error(),
		"payload": payload,
	}), "copilot.schema_invalid")
}
