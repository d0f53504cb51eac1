package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Read.BadRecordThreshold)
	assert.True(t, cfg.Read.StrictTypeChecking)
	assert.GreaterOrEqual(t, cfg.Scan.MaxConcurrentFiles, 1)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SLATE_READ_BAD_RECORD_THRESHOLD", "0.25")
	t.Setenv("SLATE_READ_STRICT_TYPE_CHECKING", "false")
	t.Setenv("SLATE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Read.BadRecordThreshold)
	assert.False(t, cfg.Read.StrictTypeChecking)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"threshold at one", func(c *Config) { c.Read.BadRecordThreshold = 1.0 }, false},
		{"threshold negative", func(c *Config) { c.Read.BadRecordThreshold = -0.1 }, true},
		{"threshold above one", func(c *Config) { c.Read.BadRecordThreshold = 1.5 }, true},
		{"zero concurrency", func(c *Config) { c.Scan.MaxConcurrentFiles = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Read: ReadConfig{BadRecordThreshold: 0, StrictTypeChecking: true},
				Scan: ScanConfig{MaxConcurrentFiles: 4},
				Log:  LogConfig{Level: "info", Format: "console"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadEnvInvalidThreshold(t *testing.T) {
	t.Setenv("SLATE_READ_BAD_RECORD_THRESHOLD", "2.0")

	_, err := Load()
	require.Error(t, err)
}
