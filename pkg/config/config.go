package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Data         DataConfig
	LiveActivity LiveActivityConfig
	Copilot      CopilotConfig
	OpenAI       OpenAIConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Telemetry    TelemetryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv(EnvPlatformPort)); port != "" {
		cfg.App.Port = port
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"APP_ENV" default:"dev"`
	Port         string `envconfig:"APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// DataConfig selects where analytics figures come from.
type DataConfig struct {
	Mode            string `envconfig:"DATA_MODE" default:"demo"`
	CacheTTLSeconds int    `envconfig:"DATA_CACHE_TTL_SECONDS" default:"300"`
	Dir             string `envconfig:"DATA_DIR" default:"data"`
}

// CacheTTL converts the configured seconds, falling back to five minutes.
func (d DataConfig) CacheTTL() time.Duration {
	if d.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// ActivityMirrorPath is the durable copy of the last successful upstream fetch.
func (d DataConfig) ActivityMirrorPath() string {
	return filepath.Join(d.Dir, "live_activity_cache.json")
}

type LiveActivityConfig struct {
	URL      string        `envconfig:"LIVE_ACTIVITY_URL" default:"https://jsonplaceholder.typicode.com/todos"`
	Timeout  time.Duration `envconfig:"LIVE_ACTIVITY_TIMEOUT" default:"7500ms"`
	MaxItems int           `envconfig:"LIVE_ACTIVITY_MAX_ITEMS" default:"220"`
}

type CopilotConfig struct {
	APIKey          string        `envconfig:"COPILOT_API_KEY" default:"dev_local_key"`
	RateLimit       int           `envconfig:"COPILOT_RATE_LIMIT" default:"10"`
	RateWindow      time.Duration `envconfig:"COPILOT_RATE_WINDOW" default:"1m"`
	CheapModel      string        `envconfig:"COPILOT_MODEL_CHEAP" default:"gpt-4o-mini"`
	QualityModel    string        `envconfig:"COPILOT_MODEL_QUALITY" default:"gpt-4o"`
	MaxOutputTokens int           `envconfig:"COPILOT_MAX_OUTPUT_TOKENS" default:"700"`
	ModelTimeout    time.Duration `envconfig:"COPILOT_MODEL_TIMEOUT" default:"25s"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY"`
	BaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
}

// Configured reports whether a model backend key is present.
func (o OpenAIConfig) Configured() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

type DBConfig struct {
	DSN    string `envconfig:"DB_DSN"`
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"DB_HOST"`
	LegacyPort     int    `envconfig:"DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DB_USER"`
	LegacyPassword string `envconfig:"DB_PASSWORD"`
	LegacyName     string `envconfig:"DB_NAME"`
	LegacySSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsPostgres reports whether the audit store targets postgres.
func (db DBConfig) IsPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverPostgres)
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis URL was supplied.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AUTO_MIGRATE" default:"true"`
}

type TelemetryConfig struct {
	Enabled     bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"opspulse-api"`
	Insecure    bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if !db.IsPostgres() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
