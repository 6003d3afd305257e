package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "SKILLEDLINK_APP_ENV"
	EnvPort                   = "SKILLEDLINK_APP_PORT"
	EnvDBDSN                  = "SKILLEDLINK_DB_DSN"
	EnvDBHost                 = "SKILLEDLINK_DB_HOST"
	EnvDBUser                 = "SKILLEDLINK_DB_USER"
	EnvDBName                 = "SKILLEDLINK_DB_NAME"
	EnvRedisURL               = "SKILLEDLINK_REDIS_URL"
	EnvJWTSecret              = "SKILLEDLINK_JWT_SECRET"
	EnvJWTIssuer              = "SKILLEDLINK_JWT_ISSUER"
	EnvJWTExpMins             = "SKILLEDLINK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SKILLEDLINK_REFRESH_TOKEN_TTL_MINUTES"
	EnvPaystackSecretKey      = "SKILLEDLINK_PAYSTACK_SECRET_KEY"
	EnvGeocodeBaseURL         = "SKILLEDLINK_GEOCODE_BASE_URL"
	EnvDedupWindow            = "SKILLEDLINK_NOTIFICATION_DEDUP_WINDOW"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
