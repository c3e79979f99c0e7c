package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverLocal    = "local"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken string         `env:"TELEGRAM_TOKEN"`
	StorageDriver string         `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	DatabaseURL   string         `env:"DATABASE_URL" envDefault:"menu_planner.db"`
	Postgres      PostgresConfig `envPrefix:"DB_"`
	LocalDataDir  string         `env:"LOCAL_DATA_DIR" envDefault:"data"`
	JWTSecret     string         `env:"JWT_SECRET"`
	SessionTTL    time.Duration  `env:"SESSION_TTL" envDefault:"720h"`
	ReminderTime  string         `env:"REMINDER_TIME" envDefault:"08:00"`
	Timezone      string         `env:"TIMEZONE" envDefault:"Local"`
	SMTP          SMTPConfig     `envPrefix:"SMTP_"`
	LogLevel      string         `env:"LOG_LEVEL" envDefault:"info"`
}

// PostgresConfig describes the hosted relational backend.
type PostgresConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"menu_planner"`
}

// DSN returns a postgres:// connection string with user and password escaped.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	return u.String()
}

// SMTPConfig is used to mail verification codes. Without a host codes are only logged.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case DriverSQLite, DriverPostgres, DriverLocal:
	default:
		return cfg, fmt.Errorf("STORAGE_DRIVER must be one of sqlite, postgres, local; got %q", cfg.StorageDriver)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return cfg, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	return cfg, nil
}

// RequireTelegram checks settings needed to run the bot.
func (c Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramToken) == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// Location resolves TIMEZONE.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
