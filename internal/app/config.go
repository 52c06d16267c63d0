package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/webseed/internal/server"
	"github.com/dmitrymomot/webseed/pkg/config"
	"github.com/dmitrymomot/webseed/pkg/httpserver"
	"github.com/dmitrymomot/webseed/pkg/mongo"
	"github.com/dmitrymomot/webseed/pkg/redis"
)

// Session store backends selectable with SESSION_STORE.
const (
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the whole application configuration. It is read once at
// startup and passed by value; nothing reads the environment afterwards.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	Mongo   mongo.Config
	Redis   redis.Config
	HTTP    httpserver.Config
	Server  server.Config
	Session SessionConfig
}

// SessionConfig controls session storage and the session cookie.
type SessionConfig struct {
	Secret        string `env:"SESSION_SECRET,required"`                     // Secret signs the session cookie; comma-separated for rotation.
	MaxAgeMs      int64  `env:"SESSION_MAX_AGE,required"`                    // MaxAgeMs is the session lifetime in milliseconds.
	CookieDomain  string `env:"COOKIE_DOMAIN"`                               // CookieDomain is optional; empty means host-only cookies.
	CookieName    string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`        // CookieName is the session cookie name.
	SecureCookies bool   `env:"SESSION_SECURE_COOKIES" envDefault:"false"`   // SecureCookies sets the Secure attribute.
	Store         string `env:"SESSION_STORE" envDefault:"mongo"`            // Store selects the backend: mongo, redis or memory.
	Collection    string `env:"SESSION_COLLECTION" envDefault:"sessions"`    // Collection is the MongoDB collection for sessions.
}

// MaxAge returns the session lifetime.
func (c SessionConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeMs) * time.Millisecond
}

// Validate checks values the env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Session.MaxAgeMs <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", c.Session.MaxAgeMs))
	}
	switch c.Session.Store {
	case StoreMongo, StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q, %q or %q, got %q", StoreMongo, StoreRedis, StoreMemory, c.Session.Store))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.HTTP.Port))
	}
	if c.Mongo.Port <= 0 || c.Mongo.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT out of range: %d", c.Mongo.Port))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// LoadConfig reads the configuration from the environment and an optional
// .env file, then validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
