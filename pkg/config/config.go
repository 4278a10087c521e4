package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Shipping     ShippingConfig
	Sendgrid     SendgridConfig
	Webhooks     WebhooksConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"LOCALMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOCALMARKET_DB_DSN"`
	Driver string `envconfig:"LOCALMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCALMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCALMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCALMARKET_DB_USER"`
	LegacyPassword string `envconfig:"LOCALMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCALMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCALMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCALMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"LOCALMARKET_STRIPE_API_KEY"`
	Secret string `envconfig:"LOCALMARKET_STRIPE_SECRET"`
	Env    string `envconfig:"LOCALMARKET_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessURL string `envconfig:"LOCALMARKET_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"LOCALMARKET_CHECKOUT_CANCEL_URL" required:"true"`
	Currency   string `envconfig:"LOCALMARKET_CHECKOUT_CURRENCY" default:"usd"`
}

type ShippingConfig struct {
	APIToken string `envconfig:"LOCALMARKET_SHIPPING_API_TOKEN"`
	BaseURL  string `envconfig:"LOCALMARKET_SHIPPING_BASE_URL"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"LOCALMARKET_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"LOCALMARKET_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"LOCALMARKET_SENDGRID_FROM_NAME" default:"Local Market"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"LOCALMARKET_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOCALMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOCALMARKET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
