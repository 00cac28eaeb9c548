package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	Admin        AdminConfig
	Media        MediaConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("MARKETPLACE_DB_DSN is required")
	}
	if len(cfg.Admin.Emails()) == 0 {
		return nil, fmt.Errorf("MARKETPLACE_ADMIN_EMAILS is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETPLACE_APP_ENV" default:"dev"`
	Port         string `envconfig:"MARKETPLACE_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"MARKETPLACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETPLACE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"MARKETPLACE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETPLACE_DB_DSN"`
	Driver string `envconfig:"MARKETPLACE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"MARKETPLACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETPLACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETPLACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETPLACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: an empty URL disables the rate limiter.
type RedisConfig struct {
	URL          string        `envconfig:"MARKETPLACE_REDIS_URL"`
	PoolSize     int           `envconfig:"MARKETPLACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETPLACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETPLACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETPLACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// IdentityConfig points at the external identity provider. Session tokens are
// HS256 JWTs verified locally with the shared secret; profile reads go over
// the provider's HTTP API.
type IdentityConfig struct {
	BaseURL       string `envconfig:"MARKETPLACE_IDENTITY_BASE_URL" default:"https://api.identity.local"`
	APIKey        string `envconfig:"MARKETPLACE_IDENTITY_API_KEY"`
	SessionSecret string `envconfig:"MARKETPLACE_IDENTITY_SESSION_SECRET" required:"true"`
	Issuer        string `envconfig:"MARKETPLACE_IDENTITY_ISSUER" default:"identity"`
}

// AdminConfig carries the privileged-email allow-list. Matching emails are
// always treated as admin regardless of directory state.
type AdminConfig struct {
	EmailList string `envconfig:"MARKETPLACE_ADMIN_EMAILS"`
}

// Emails returns the normalized allow-list entries.
func (a AdminConfig) Emails() []string {
	parts := strings.Split(a.EmailList, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			emails = append(emails, strings.ToLower(trimmed))
		}
	}
	return emails
}

type MediaConfig struct {
	UploadDir   string `envconfig:"MARKETPLACE_UPLOAD_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"MARKETPLACE_MAX_UPLOAD_MB" default:"10"`
}

func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

type RateLimitConfig struct {
	RegisterWindow  time.Duration `envconfig:"MARKETPLACE_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"MARKETPLACE_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETPLACE_AUTO_MIGRATE" default:"false"`
}
