package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AbsentFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultProbeTimeout, cfg.Probe.Timeout.Std())
	assert.Equal(t, DefaultInitialCredits, cfg.Ledger.DefaultInitial)
	assert.Equal(t, DefaultSaveInterval, cfg.Ledger.SaveInterval.Std())
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadFromBytes_Partial(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("server:\n  port: 9000\nledger:\n  default_initial: 25.5\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 25.5, cfg.Ledger.DefaultInitial)
	// Unset fields still default.
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, DefaultSaveInterval, cfg.Ledger.SaveInterval.Std())
}

func TestLoadFromBytes_Durations(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("probe:\n  timeout: 2s\n  disabled: true\nledger:\n  save_interval: 30s\n"))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout.Std())
	assert.True(t, cfg.Probe.Disabled)
	assert.Equal(t, 30*time.Second, cfg.Ledger.SaveInterval.Std())
}

func TestLoadFromBytes_Malformed(t *testing.T) {
	_, err := LoadFromBytes([]byte("server: [not a map"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvDataDir, "/var/lib/creditsd")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadFromBytes([]byte("server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/var/lib/creditsd", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	_, err := LoadFromBytes([]byte("server:\n  port: 700000\n"))
	assert.Error(t, err)

	_, err = LoadFromBytes([]byte("ledger:\n  default_initial: -10\n"))
	assert.Error(t, err)
}
