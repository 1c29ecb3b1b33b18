package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 10, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, 15, cfg.Fetch.WatchdogSeconds)
	require.Equal(t, 1500*1024, cfg.Fetch.MaxBodyBytes)
	require.Equal(t, 5, cfg.Fetch.MaxInFlight)
	require.Equal(t, 400, cfg.Crawl.ThrottleMs)
	require.Equal(t, 100, cfg.Run.MaxSendCap)
	require.Equal(t, 6, cfg.Run.Concurrency)
	require.Equal(t, 1000, cfg.Ledger.DebounceMs)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout())
	require.Equal(t, 15*time.Second, cfg.FetchWatchdog())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
run:
  max_send_cap: 50
  resend_on_shortfall: true
auth:
  enabled: true
  api_key: sekrit
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 50, cfg.Run.MaxSendCap)
	require.True(t, cfg.Run.ResendOnShortfall)
	require.Equal(t, "sekrit", cfg.Auth.APIKey)
	// Defaults survive a partial file.
	require.Equal(t, 20, cfg.Places.PageSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Fetch.WatchdogSeconds = cfg.Fetch.TimeoutSeconds - 1
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Run.Concurrency = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = ""
	require.Error(t, cfg.Validate())

	require.NoError(t, base().Validate())
}
