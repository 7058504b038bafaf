package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr                     string        `envconfig:"APP_ADDR" default:":8080"`
	Environment              string        `envconfig:"APP_ENV" default:"development"`
	LogFormat                string        `envconfig:"LOG_FORMAT" default:"json"`
	DatabaseURL              string        `envconfig:"DATABASE_URL"`
	JWTSecret                string        `envconfig:"JWT_SECRET"`
	RedisAddr                string        `envconfig:"REDIS_ADDR"`
	RunMigrations            bool          `envconfig:"RUN_MIGRATIONS" default:"true"`
	MigrationsDir            string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	BootstrapSuperAdminEmail string        `envconfig:"BOOTSTRAP_SUPER_ADMIN_EMAIL"`
	NotifyActorOnRoleChange  bool          `envconfig:"NOTIFY_ACTOR_ON_ROLE_CHANGE" default:"false"`
	RateLimitPerMinute       int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	MaxBodyBytes             int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	MetricsEnabled           bool          `envconfig:"METRICS_ENABLED" default:"true"`
	RequestTimeout           time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && len(strings.TrimSpace(c.JWTSecret)) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}
	return nil
}
