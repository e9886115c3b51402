package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/opspulse-backend/api/controllers"
	"github.com/angelmondragon/opspulse-backend/api/routes"
	"github.com/angelmondragon/opspulse-backend/internal/activity"
	"github.com/angelmondragon/opspulse-backend/internal/analytics"
	analyticstypes "github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
	"github.com/angelmondragon/opspulse-backend/internal/copilot"
	"github.com/angelmondragon/opspulse-backend/internal/demo"
	"github.com/angelmondragon/opspulse-backend/internal/ratelimit"
	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/angelmondragon/opspulse-backend/pkg/db"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/metrics"
	"github.com/angelmondragon/opspulse-backend/pkg/migrate"
	"github.com/angelmondragon/opspulse-backend/pkg/openai"
	"github.com/angelmondragon/opspulse-backend/pkg/redis"
	"github.com/angelmondragon/opspulse-backend/pkg/telemetry"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, logg)
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(flushCtx)
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	pingers := map[string]controllers.Pinger{"database": dbClient}

	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)
		pingers["redis"] = redisClient
		limiter = ratelimit.NewRedisLimiter(redisClient)
	} else {
		mem := ratelimit.NewMemoryLimiter()
		go sweepLimiter(ctx, mem)
		limiter = mem
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cache := activity.NewCache(
		activity.NewHTTPFeed(cfg.LiveActivity.URL, activity.WithFeedTimeout(cfg.LiveActivity.Timeout)),
		activity.NewFileMirror(cfg.Data.ActivityMirrorPath()),
		activity.WithLogger(logg),
		activity.WithObserver(metrics.NewActivityCacheMetrics(reg)),
	)

	analyticsSvc, err := analytics.NewService(analytics.Config{
		Mode:     analyticstypes.DataMode(cfg.Data.Mode),
		CacheTTL: cfg.Data.CacheTTL(),
		MaxItems: cfg.LiveActivity.MaxItems,
	}, demo.NewGenerator(), cache)
	if err != nil {
		return err
	}

	var model copilot.ModelClient
	if cfg.OpenAI.Configured() {
		client, err := openai.NewClient(cfg.OpenAI.APIKey, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		if err != nil {
			return err
		}
		model = client
	}

	copilotSvc, err := copilot.NewService(copilot.Config{
		CheapModel:      cfg.Copilot.CheapModel,
		QualityModel:    cfg.Copilot.QualityModel,
		MaxOutputTokens: cfg.Copilot.MaxOutputTokens,
		ModelTimeout:    cfg.Copilot.ModelTimeout,
	}, analyticsSvc, model, nil,
		copilot.WithMetrics(metrics.NewCopilotMetrics(reg)),
		copilot.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	auditSvc := auditlog.NewService(auditlog.NewRepository(dbClient.DB()), logg)

	handler := routes.NewRouter(routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		Pingers:        pingers,
		Analytics:      analyticsSvc,
		Copilot:        copilotSvc,
		Audit:          auditSvc,
		Limiter:        limiter,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"data_mode":  string(analyticsSvc.Mode()),
		"model_live": model != nil,
		"redis":      cfg.Redis.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.MemoryLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
