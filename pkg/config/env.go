package config

const (
	EnvPrefix = "ECOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "ECOM_APP_ENV"
	EnvPort      = "ECOM_APP_PORT"
	EnvLogLevel  = "ECOM_LOG_LEVEL"
	EnvDBDSN     = "ECOM_DB_DSN"
	EnvDBHost    = "ECOM_DB_HOST"
	EnvDBPort    = "ECOM_DB_PORT"
	EnvDBUser    = "ECOM_DB_USER"
	EnvDBPass    = "ECOM_DB_PASSWORD"
	EnvDBName    = "ECOM_DB_NAME"
	EnvRedisURL  = "ECOM_REDIS_URL"
	EnvJWTSecret = "ECOM_JWT_SECRET"
	EnvJWTIssuer = "ECOM_JWT_ISSUER"
	EnvJWTExp    = "ECOM_JWT_EXPIRATION_MINUTES"
	EnvJWKSURL   = "ECOM_IDENTITY_JWKS_URL"
	EnvAdminRole = "ECOM_IDENTITY_ADMIN_ROLE"
	EnvCORS      = "ECOM_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
