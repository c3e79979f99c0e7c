package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.StorageDriver)
		assert.Equal(t, "menu_planner.db", cfg.DatabaseURL)
		assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "08:00", cfg.ReminderTime)
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.False(t, cfg.SMTP.Enabled())
	})

	t.Run("postgres settings", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORAGE_DRIVER", "Postgres")
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_PASSWORD", "pw")
		t.Setenv("DB_NAME", "menus")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverPostgres, cfg.StorageDriver)
		assert.Equal(t, "postgres://postgres:pw@db:5432/menus", cfg.Postgres.DSN())
	})

	t.Run("smtp from defaults to user", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SMTP_HOST", "smtp.example.com")
		t.Setenv("SMTP_USER", "planner@example.com")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.SMTP.Enabled())
		assert.Equal(t, "planner@example.com", cfg.SMTP.From)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("STORAGE_DRIVER", "mongo")

		_, err := Load()
		assert.ErrorContains(t, err, "STORAGE_DRIVER")
	})
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "chef", Password: "p@ss:w/rd#1", Name: "menus"}

	dsn := cfg.DSN()
	assert.Equal(t, "postgres://chef:p%40ss%3Aw%2Frd%231@db:5432/menus", dsn)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:5432", u.Host)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss:w/rd#1", password)
	assert.Equal(t, "/menus", u.Path)

	ipv6 := PostgresConfig{Host: "::1", Port: 5433, User: "postgres", Name: "menus"}
	assert.Equal(t, "postgres://postgres:@[::1]:5433/menus", ipv6.DSN())
}

func TestRequireTelegram(t *testing.T) {
	assert.Error(t, Config{}.RequireTelegram())
	assert.NoError(t, Config{TelegramToken: "123:abc"}.RequireTelegram())
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Config{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}
