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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Notifications NotificationsConfig
	Bookings      BookingsConfig
	Subscriptions SubscriptionsConfig
	Geocode       GeocodeConfig
	Paystack      PaystackConfig
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
	Env          string `envconfig:"SKILLEDLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"SKILLEDLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SKILLEDLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKILLEDLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SKILLEDLINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SKILLEDLINK_DB_DSN"`
	Driver string `envconfig:"SKILLEDLINK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SKILLEDLINK_DB_HOST"`
	Port     int    `envconfig:"SKILLEDLINK_DB_PORT" default:"5432"`
	User     string `envconfig:"SKILLEDLINK_DB_USER"`
	Password string `envconfig:"SKILLEDLINK_DB_PASSWORD"`
	Name     string `envconfig:"SKILLEDLINK_DB_NAME"`
	SSLMode  string `envconfig:"SKILLEDLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKILLEDLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKILLEDLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKILLEDLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKILLEDLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKILLEDLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SKILLEDLINK_REDIS_ADDR"`
	Password     string        `envconfig:"SKILLEDLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SKILLEDLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SKILLEDLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKILLEDLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKILLEDLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKILLEDLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKILLEDLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SKILLEDLINK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SKILLEDLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SKILLEDLINK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SKILLEDLINK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SKILLEDLINK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SKILLEDLINK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SKILLEDLINK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SKILLEDLINK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SKILLEDLINK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SKILLEDLINK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SKILLEDLINK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SKILLEDLINK_AUTO_MIGRATE" default:"false"`
}

type NotificationsConfig struct {
	// DedupWindow bounds how close two identical title/message pairs may be
	// before the second insert is treated as a duplicate.
	DedupWindow   time.Duration `envconfig:"SKILLEDLINK_NOTIFICATION_DEDUP_WINDOW" default:"5s"`
	RetentionDays int           `envconfig:"SKILLEDLINK_NOTIFICATION_RETENTION_DAYS" default:"7"`
}

type BookingsConfig struct {
	// FreeMonthlyAcceptLimit caps how many jobs a free-plan artisan can accept
	// per calendar month before a limitReached rejection.
	FreeMonthlyAcceptLimit int `envconfig:"SKILLEDLINK_FREE_MONTHLY_ACCEPT_LIMIT" default:"5"`
}

type SubscriptionsConfig struct {
	PremiumAmountKobo int64  `envconfig:"SKILLEDLINK_PREMIUM_AMOUNT_KOBO" default:"500000"`
	Currency          string `envconfig:"SKILLEDLINK_SUBSCRIPTION_CURRENCY" default:"NGN"`
	PeriodDays        int    `envconfig:"SKILLEDLINK_SUBSCRIPTION_PERIOD_DAYS" default:"30"`
}

type GeocodeConfig struct {
	BaseURL   string        `envconfig:"SKILLEDLINK_GEOCODE_BASE_URL"`
	Timeout   time.Duration `envconfig:"SKILLEDLINK_GEOCODE_TIMEOUT" default:"15s"`
	CacheSize int           `envconfig:"SKILLEDLINK_GEOCODE_CACHE_SIZE" default:"1024"`
}

type PaystackConfig struct {
	SecretKey   string `envconfig:"SKILLEDLINK_PAYSTACK_SECRET_KEY"`
	BaseURL     string `envconfig:"SKILLEDLINK_PAYSTACK_BASE_URL"`
	CallbackURL string `envconfig:"SKILLEDLINK_PAYSTACK_CALLBACK_URL"`
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
	for _, env := range fallbackDBEnvVars {
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
