package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/tenderalert.sqlite", cfg.Database.Path)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
	require.Equal(t, 10*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "Africa/Addis_Ababa", cfg.Notify.Timezone)
	require.Equal(t, 3, cfg.Notify.MaxRetries)
	require.Equal(t, time.Second, cfg.Notify.RetryBackoff)
	require.Equal(t, "@every 10m", cfg.Notify.PendingSchedule)
	require.Equal(t, "@daily", cfg.Notify.ExpirySchedule)
	require.Equal(t, 1000, cfg.Notify.ExpiryBatchSize)

	require.Equal(t, "tenderalert", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "/metrics", cfg.Metrics.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "console", cfg.Server.LogEncoding)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "tenderalert", cfg.Database.Name)
	require.Equal(t, map[string]string{"sslmode": "disable"}, cfg.Database.Options)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, "alerts@example.com", cfg.Email.SMTP.From)
	require.False(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 30*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "Europe/Berlin", cfg.Notify.Timezone)
	require.Equal(t, 5, cfg.Notify.MaxRetries)
	require.Equal(t, 2*time.Second, cfg.Notify.RetryBackoff)
	require.Equal(t, "@every 1m", cfg.Notify.PendingSchedule)
	require.Equal(t, "@hourly", cfg.Notify.ExpirySchedule)
	require.Equal(t, 250, cfg.Notify.ExpiryBatchSize)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "tenderalert-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.False(t, cfg.Metrics.Enabled)
}

func TestNotifyLocation(t *testing.T) {
	cfg := NotifyConfig{Timezone: "Europe/Berlin"}
	loc := cfg.Location()
	require.Equal(t, "Europe/Berlin", loc.String())

	cfg = NotifyConfig{Timezone: "Not/AZone"}
	require.Equal(t, time.UTC, cfg.Location())
}

func TestDatabaseConfigMapping(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "mysql",
		Host:     "db",
		Port:     3306,
		Name:     "tenders",
		User:     "root",
		Password: "pw",
		Options:  map[string]string{"charset": "utf8mb4"},
	}

	mapped := cfg.Config()
	require.Equal(t, "mysql", mapped.Driver)
	require.Equal(t, "db", mapped.Host)
	require.Equal(t, 3306, mapped.Port)
	require.Equal(t, "tenders", mapped.Name)
	require.Equal(t, map[string]string{"charset": "utf8mb4"}, mapped.Options)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TENDER_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("TENDER_SERVER_PORT", "9999")
	t.Setenv("TENDER_NOTIFY_MAX_RETRIES", "7")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 7, cfg.Notify.MaxRetries)
}
