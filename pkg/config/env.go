package config

// EnvPrefix is left empty because every field carries its fully qualified key.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSQLiteDSN = "file:storefront.db?cache=shared"

const (
	EnvAppEnv = "STOREFRONT_APP_ENV"
	EnvPort   = "STOREFRONT_APP_PORT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret               = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer               = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins              = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID            = "STOREFRONT_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic       = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub         = "STOREFRONT_PUBSUB_ORDERS_SUBSCRIPTION"
	EnvUseSQLite               = "STOREFRONT_USE_SQLITE"
	EnvOrdersDefaultStatus     = "STOREFRONT_ORDERS_DEFAULT_STATUS"
	EnvOrdersClearCart         = "STOREFRONT_ORDERS_CLEAR_CART"
	EnvMediaPublicBaseURL      = "STOREFRONT_MEDIA_PUBLIC_BASE_URL"
	EnvCronOutboxRetentionDays = "STOREFRONT_CRON_OUTBOX_RETENTION_DAYS"
	EnvCORSOrigins             = "STOREFRONT_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
