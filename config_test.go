// FILE: lixenwraith/logship/config_test.go
package logship

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://events.baselime.io/v1", cfg.BaseURL)
	assert.Equal(t, int64(10000), cfg.FlushAfterMs)
	assert.Equal(t, int64(100), cfg.FlushAfterLogs)
	assert.Equal(t, int64(5000), cfg.RequestTimeoutMs)
	assert.Equal(t, "stdout", cfg.FallbackTarget)
	assert.True(t, cfg.ConsoleColor)
	assert.False(t, cfg.IsLocalDev)
	assert.False(t, cfg.Compress)
	assert.Empty(t, cfg.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Dataset = "cloudflare"
	cfg1.FlushAfterLogs = 7

	cfg2 := cfg1.Clone()

	// Verify deep copy
	assert.Equal(t, cfg1.Dataset, cfg2.Dataset)
	assert.Equal(t, cfg1.FlushAfterLogs, cfg2.FlushAfterLogs)

	// Modify original
	cfg1.Dataset = "other"

	// Verify clone unchanged
	assert.Equal(t, "cloudflare", cfg2.Dataset)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "zero flush delay",
			modify:    func(c *Config) { c.FlushAfterMs = 0 },
			wantError: "flush_after_ms must be positive",
		},
		{
			name:      "negative flush threshold",
			modify:    func(c *Config) { c.FlushAfterLogs = -1 },
			wantError: "flush_after_logs must be positive",
		},
		{
			name:      "zero request timeout",
			modify:    func(c *Config) { c.RequestTimeoutMs = 0 },
			wantError: "request_timeout_ms must be positive",
		},
		{
			name:      "invalid fallback target",
			modify:    func(c *Config) { c.FallbackTarget = "file" },
			wantError: "invalid fallback_target",
		},
		{
			name:      "relative base url",
			modify:    func(c *Config) { c.BaseURL = "/v1" },
			wantError: "invalid baselime_url",
		},
		{
			name:      "unsupported scheme",
			modify:    func(c *Config) { c.BaseURL = "ftp://events.example.com" },
			wantError: "invalid baselime_url",
		},
		{
			name:      "api key without dataset",
			modify:    func(c *Config) { c.APIKey = "key" },
			wantError: "dataset cannot be empty",
		},
		{
			name: "api key without dataset in local dev",
			modify: func(c *Config) {
				c.APIKey = "key"
				c.IsLocalDev = true
			},
			wantError: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestConfigEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dataset = "cloudflare"
	assert.Equal(t, "https://events.baselime.io/v1/cloudflare", cfg.endpoint())

	cfg.BaseURL = "http://localhost:8080/v1/"
	cfg.Dataset = "my logs"
	assert.Equal(t, "http://localhost:8080/v1/my%20logs", cfg.endpoint())
}

func TestApplyOverride(t *testing.T) {
	t.Run("all kinds", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride(
			"api_key=abc",
			"dataset=cloudflare",
			"flush_after_logs=5",
			"flush_after_ms=250",
			"compress=true",
			"is_local_dev=true",
			"fallback_target=stderr",
		)
		require.NoError(t, err)

		assert.Equal(t, "abc", cfg.APIKey)
		assert.Equal(t, "cloudflare", cfg.Dataset)
		assert.Equal(t, int64(5), cfg.FlushAfterLogs)
		assert.Equal(t, int64(250), cfg.FlushAfterMs)
		assert.True(t, cfg.Compress)
		assert.True(t, cfg.IsLocalDev)
		assert.Equal(t, "stderr", cfg.FallbackTarget)
	})

	t.Run("errors leave config unchanged", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride(
			"dataset=kept-out",
			"flush_after_logs=many",
			"compress=perhaps",
			"no_such_key=1",
			"malformed",
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple configuration errors")
		assert.Contains(t, err.Error(), "invalid integer value for flush_after_logs")
		assert.Contains(t, err.Error(), "invalid boolean value for compress")
		assert.Contains(t, err.Error(), "unknown config key in override: no_such_key")
		assert.Contains(t, err.Error(), "expected key=value")

		assert.Empty(t, cfg.Dataset)
		assert.Equal(t, int64(DefaultFlushAfterLogs), cfg.FlushAfterLogs)
	})

	t.Run("single error unwrapped", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyOverride("flush_after_ms=x")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "multiple")
	})
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"api_key":          "abc",
		"dataset":          "ds",
		"flush_after_logs": 20,
		"flush_after_ms":   float64(500),
		"is_local_dev":     false,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), cfg.FlushAfterLogs)
	assert.Equal(t, int64(500), cfg.FlushAfterMs)

	_, err = NewConfigFromDefaults(map[string]any{"unknown": 1})
	assert.ErrorContains(t, err, "unknown config key")

	_, err = NewConfigFromDefaults(map[string]any{"flush_after_ms": 1.5})
	assert.ErrorContains(t, err, "expected integer")

	_, err = NewConfigFromDefaults(map[string]any{"compress": "yes"})
	assert.ErrorContains(t, err, "expected bool")

	_, err = NewConfigFromDefaults(map[string]any{"flush_after_logs": 0})
	assert.ErrorContains(t, err, "flush_after_logs must be positive")
}

func TestNewConfigFromFile(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("values from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logship.toml")
		content := `
[logship]
api_key = "file-key"
dataset = "from-file"
service = "worker"
flush_after_logs = 42
compress = true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.APIKey)
		assert.Equal(t, "from-file", cfg.Dataset)
		assert.Equal(t, "worker", cfg.Service)
		assert.Equal(t, int64(42), cfg.FlushAfterLogs)
		assert.True(t, cfg.Compress)
		assert.Equal(t, int64(DefaultFlushAfterMs), cfg.FlushAfterMs)
	})
}
