package app

import (
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

	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
	require.Equal(t, 10*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, 50, cfg.Outreach.BatchSize)
	require.Equal(t, 100*time.Millisecond, cfg.Outreach.SendDelay)
	require.Equal(t, 7*24*time.Hour, cfg.Outreach.ClaimTokenTTL)
	require.Equal(t, 5*time.Minute, cfg.Outreach.LeaseTTL)
	require.True(t, cfg.Outreach.Scheduler.Enabled)
	require.Equal(t, "@every 1m", cfg.Outreach.Scheduler.SendSpec)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Monitoring.Health.Enabled)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OUTREACH_SERVER_PORT", "9001")
	t.Setenv("OUTREACH_OUTREACH_BATCH_SIZE", "5")
	t.Setenv("OUTREACH_OUTREACH_SEND_DELAY", "250ms")
	t.Setenv("OUTREACH_OUTREACH_CLAIM_BASE_URL", "https://citydex.example")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 5, cfg.Outreach.BatchSize)
	require.Equal(t, 250*time.Millisecond, cfg.Outreach.SendDelay)
	require.Equal(t, "https://citydex.example", cfg.Outreach.ClaimBaseURL)
}

func TestConfigureLoggingDefaultsLevel(t *testing.T) {
	require.NoError(t, ConfigureLogging(""))
	require.NoError(t, ConfigureLogging("debug"))
	// Unknown levels fall back to info instead of failing startup.
	require.NoError(t, ConfigureLogging("not-a-level"))
}
