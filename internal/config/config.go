// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/gentaArnezzi/onvlo/internal/repository"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configurable values for the app.
type Config struct {
	Env       string `env:"ENV" envDefault:"development"`
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Store     string `env:"STORE" envDefault:"memory"`

	DB    DB    `envPrefix:"DB_"`
	Redis Redis `envPrefix:"REDIS_"`

	WizardSessionTTL time.Duration `env:"WIZARD_SESSION_TTL" envDefault:"24h"`
	Locale           string        `env:"LOCALE" envDefault:"en-US"`
	AppURL           string        `env:"APP_URL" envDefault:"http://localhost:3000"`

	Mailer Mailer `envPrefix:"MAILER_"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"onvlo"`
}

type DB struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"onvlo"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"10"`
}

// Postgres converts the settings for repository.OpenPostgres.
func (d DB) Postgres() repository.PostgresConfig {
	return repository.PostgresConfig{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
		MaxConns: d.MaxConns,
	}
}

// Redis backs the wizard session store. An empty Addr keeps sessions in memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Mailer configures welcome email delivery. An empty Endpoint logs messages
// instead of sending them.
type Mailer struct {
	Endpoint      string        `env:"ENDPOINT"`
	APIKey        string        `env:"API_KEY"`
	From          string        `env:"FROM" envDefault:"noreply@onvlo.app"`
	QueueSize     int           `env:"QUEUE_SIZE" envDefault:"10"`
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"5s"`
}

// Load reads environment variables and populates a Config struct. It panics
// on values that cannot be parsed.
func Load() *Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Panicf("Invalid configuration: %v", err)
	}

	if cfg.Store != StoreMemory && cfg.Store != StorePostgres {
		log.Panicf("Invalid STORE: %q", cfg.Store)
	}
	if cfg.Mailer.QueueSize < 1 {
		log.Panicf("Invalid MAILER_QUEUE_SIZE: %d", cfg.Mailer.QueueSize)
	}
	if cfg.Mailer.FlushInterval <= 0 {
		log.Panicf("Invalid MAILER_FLUSH_INTERVAL: %s", cfg.Mailer.FlushInterval)
	}
	if cfg.WizardSessionTTL <= 0 {
		log.Panicf("Invalid WIZARD_SESSION_TTL: %s", cfg.WizardSessionTTL)
	}
	return &cfg
}
