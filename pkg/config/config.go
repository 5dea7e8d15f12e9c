package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Identity      IdentityConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	Analytics     AnalyticsConfig
	CORS          CORSConfig
	Bootstrap     BootstrapConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOM_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOM_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"ECOM_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ECOM_DB_DSN"`

	Host     string `envconfig:"ECOM_DB_HOST"`
	Port     int    `envconfig:"ECOM_DB_PORT" default:"5432"`
	User     string `envconfig:"ECOM_DB_USER"`
	Password string `envconfig:"ECOM_DB_PASSWORD"`
	Name     string `envconfig:"ECOM_DB_NAME"`
	SSLMode  string `envconfig:"ECOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"ECOM_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOM_REDIS_URL"`
	Address      string        `envconfig:"ECOM_REDIS_ADDR"`
	Password     string        `envconfig:"ECOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// JWTConfig drives the locally minted HS256 tokens returned by /authenticate.
type JWTConfig struct {
	Secret            string `envconfig:"ECOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ECOM_JWT_ISSUER" default:"ecom-backend"`
	ExpirationMinutes int    `envconfig:"ECOM_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the configured token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// IdentityConfig points at the external identity provider whose tokens are
// accepted on bearer routes.
type IdentityConfig struct {
	JWKSURL         string        `envconfig:"ECOM_IDENTITY_JWKS_URL"`
	Issuer          string        `envconfig:"ECOM_IDENTITY_ISSUER"`
	Audience        string        `envconfig:"ECOM_IDENTITY_AUDIENCE"`
	AdminRole       string        `envconfig:"ECOM_IDENTITY_ADMIN_ROLE" default:"admin"`
	RefreshInterval time.Duration `envconfig:"ECOM_IDENTITY_JWKS_REFRESH" default:"1h"`
}

// Enabled reports whether a published key set is configured.
func (i IdentityConfig) Enabled() bool {
	return strings.TrimSpace(i.JWKSURL) != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"ECOM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"ECOM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"ECOM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignUpWindow     time.Duration `envconfig:"ECOM_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignUpEmailLimit int           `envconfig:"ECOM_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignUpIPLimit    int           `envconfig:"ECOM_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"ECOM_IDEMPOTENCY_TTL" default:"24h"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `envconfig:"ECOM_ANALYTICS_CACHE_TTL" default:"1m"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `envconfig:"ECOM_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:5177"`
	AllowCredentials bool          `envconfig:"ECOM_CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"ECOM_CORS_MAX_AGE" default:"5m"`
}

// BootstrapConfig describes the admin account provisioned at startup when no
// admin exists yet.
type BootstrapConfig struct {
	Enabled       bool   `envconfig:"ECOM_BOOTSTRAP_ADMIN" default:"true"`
	AdminEmail    string `envconfig:"ECOM_BOOTSTRAP_ADMIN_EMAIL" default:"admin@test.com"`
	AdminName     string `envconfig:"ECOM_BOOTSTRAP_ADMIN_NAME" default:"admin"`
	AdminPassword string `envconfig:"ECOM_BOOTSTRAP_ADMIN_PASSWORD" default:"admin"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ECOM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
