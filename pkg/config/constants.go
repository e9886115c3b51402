package config

// EnvPrefix namespaces every variable. Bare names (DATA_MODE, OPENAI_API_KEY)
// are honoured as fallbacks so existing .env files keep working.
const EnvPrefix = "OPSPULSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv          = "APP_ENV"
	EnvPort            = "APP_PORT"
	EnvPlatformPort    = "PORT"
	EnvDataMode        = "DATA_MODE"
	EnvDataCacheTTL    = "DATA_CACHE_TTL_SECONDS"
	EnvDataDir         = "DATA_DIR"
	EnvLiveActivityURL = "LIVE_ACTIVITY_URL"
	EnvCopilotAPIKey   = "COPILOT_API_KEY"
	EnvCopilotLimit    = "COPILOT_RATE_LIMIT"
	EnvCopilotWindow   = "COPILOT_RATE_WINDOW"
	EnvModelCheap      = "COPILOT_MODEL_CHEAP"
	EnvModelQuality    = "COPILOT_MODEL_QUALITY"
	EnvModelTimeout    = "COPILOT_MODEL_TIMEOUT"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvDBDriver        = "DB_DRIVER"
	EnvDBDSN           = "DB_DSN"
	EnvDBHost          = "DB_HOST"
	EnvDBUser          = "DB_USER"
	EnvDBName          = "DB_NAME"
	EnvRedisURL        = "REDIS_URL"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"

	defaultSQLiteDSN = "data/ops_logs.db"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
