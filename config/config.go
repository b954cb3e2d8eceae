package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	DataDir        string        `mapstructure:"DATA_DIR"`
	UploadsDir     string        `mapstructure:"UPLOADS_DIR"`
	StoreDriver    string        `mapstructure:"STORE_DRIVER"`
	DBURL          string        `mapstructure:"DB_URL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	SymmetricKey   string        `mapstructure:"SYMMETRIC_KEY"`
	CORSOrigins    []string      `mapstructure:"-"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	MaxUploadBytes int64         `mapstructure:"MAX_UPLOAD_BYTES"`
	SMTPHost       string        `mapstructure:"SMTP_HOST"`
	SMTPPort       int           `mapstructure:"SMTP_PORT"`
	SMTPUser       string        `mapstructure:"SMTP_USER"`
	SMTPPass       string        `mapstructure:"SMTP_PASS"`
}

var keys = []string{
	"ENV", "PORT", "DATA_DIR", "UPLOADS_DIR", "STORE_DRIVER", "DB_URL", "REDIS_URL",
	"SYMMETRIC_KEY", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SESSION_TTL",
	"MAX_UPLOAD_BYTES", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
}

// Load reads the environment, optionally backed by a .env file in the
// working directory.
func Load() (*AppConfig, error) {
	return load(".env")
}

func load(envFile string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8930")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("STORE_DRIVER", DriverFile)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 15)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("SMTP_PORT", 587)

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	// a missing .env is fine
	_ = v.ReadInConfig()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(DriverFile, DriverPostgres)),
		validation.Field(&c.DataDir, validation.When(c.StoreDriver == DriverFile, validation.Required)),
		validation.Field(&c.UploadsDir, validation.Required),
		validation.Field(&c.DBURL, validation.When(c.StoreDriver == DriverPostgres, validation.Required)),
		validation.Field(&c.SymmetricKey, validation.Required, validation.Length(32, 32)),
		validation.Field(&c.RateLimitRPS, validation.Min(0.1)),
		validation.Field(&c.RateLimitBurst, validation.Min(1)),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(1))),
	)
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development"
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *AppConfig) RedisEnabled() bool {
	return c.RedisURL != ""
}

// MailEnabled reports whether SMTP is configured for reset codes.
func (c *AppConfig) MailEnabled() bool {
	return c.SMTPHost != ""
}

// Addr is the listen address.
func (c *AppConfig) Addr() string {
	return ":" + c.Port
}
