package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != AppEnvDev || cfg.App.Port != "8080" {
		t.Fatalf("unexpected app defaults %+v", cfg.App)
	}
	if cfg.Data.Mode != "demo" {
		t.Fatalf("expected demo data mode, got %q", cfg.Data.Mode)
	}
	if got := cfg.Data.CacheTTL(); got != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", got)
	}
	if cfg.Copilot.APIKey != "dev_local_key" || cfg.Copilot.RateLimit != 10 || cfg.Copilot.RateWindow != time.Minute {
		t.Fatalf("unexpected copilot defaults %+v", cfg.Copilot)
	}
	if cfg.Copilot.CheapModel != "gpt-4o-mini" || cfg.Copilot.QualityModel != "gpt-4o" {
		t.Fatalf("unexpected model defaults %+v", cfg.Copilot)
	}
	if cfg.LiveActivity.Timeout != 7500*time.Millisecond {
		t.Fatalf("expected 7.5s live timeout, got %v", cfg.LiveActivity.Timeout)
	}
	if cfg.OpenAI.Configured() {
		t.Fatalf("expected no model backend by default")
	}
	if cfg.DB.DSN != defaultSQLiteDSN {
		t.Fatalf("expected sqlite default dsn, got %q", cfg.DB.DSN)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without a url")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataMode, "live")
	t.Setenv(EnvDataCacheTTL, "42")
	t.Setenv(EnvDataDir, "/tmp/ops")
	t.Setenv(EnvCopilotAPIKey, "secret")
	t.Setenv(EnvCopilotWindow, "30s")
	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	t.Setenv(EnvPlatformPort, "9999")
	t.Setenv(EnvPrefix+"_REDIS_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Data.Mode != "live" || cfg.Data.CacheTTL() != 42*time.Second {
		t.Fatalf("unexpected data config %+v", cfg.Data)
	}
	if got := cfg.Data.ActivityMirrorPath(); got != filepath.Join("/tmp/ops", "live_activity_cache.json") {
		t.Fatalf("unexpected mirror path %q", got)
	}
	if cfg.Copilot.APIKey != "secret" || cfg.Copilot.RateWindow != 30*time.Second {
		t.Fatalf("unexpected copilot config %+v", cfg.Copilot)
	}
	if !cfg.OpenAI.Configured() {
		t.Fatalf("expected model backend to be configured")
	}
	if cfg.App.Port != "9999" {
		t.Fatalf("expected PORT to override app port, got %q", cfg.App.Port)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("prefixed key should load, got %q", cfg.Redis.URL)
	}
}

func TestLoad_PostgresRequiresDSNOrLegacyParts(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBDriver, DBDriverPostgres)

	if _, err := Load(); err == nil {
		t.Fatal("expected postgres without dsn to return an error")
	}

	t.Setenv(EnvDBHost, "localhost")
	t.Setenv(EnvDBUser, "ops")
	t.Setenv(EnvDBName, "opspulse")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://ops@localhost:5432/opspulse?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}

func TestAllowedOrigins(t *testing.T) {
	app := AppConfig{CORSOrigins: " https://a.example , ,https://b.example"}
	got := app.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
	if got := (AppConfig{}).AllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard fallback, got %v", got)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAppEnv, EnvPort, EnvPlatformPort, EnvDataMode, EnvDataCacheTTL, EnvDataDir,
		EnvLiveActivityURL, EnvCopilotAPIKey, EnvCopilotLimit, EnvCopilotWindow,
		EnvModelCheap, EnvModelQuality, EnvModelTimeout, EnvOpenAIAPIKey,
		EnvDBDriver, EnvDBDSN, EnvDBHost, EnvDBUser, EnvDBName, EnvRedisURL,
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}
