// FILE: config.go
package logship

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all logger construction parameters
type Config struct {
	// Ingestion routing
	APIKey    string `toml:"api_key"` // Absent key degrades to fallback-only output
	Dataset   string `toml:"dataset"`
	Service   string `toml:"service"`
	Namespace string `toml:"namespace"`
	BaseURL   string `toml:"baselime_url"`

	// Flush cadence
	FlushAfterMs     int64 `toml:"flush_after_ms"`     // Deferred flush delay
	FlushAfterLogs   int64 `toml:"flush_after_logs"`   // Size threshold for immediate flush
	RequestTimeoutMs int64 `toml:"request_timeout_ms"` // POST timeout when the flush context has no deadline
	Compress         bool  `toml:"compress"`           // Gzip request bodies

	// Request scope
	RequestID string `toml:"request_id"` // Generated when empty

	// Local output
	IsLocalDev     bool   `toml:"is_local_dev"`    // Console only, nothing is shipped
	FallbackTarget string `toml:"fallback_target"` // "stdout" or "stderr"
	ConsoleColor   bool   `toml:"console_color"`   // ANSI colors in local dev output
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	BaseURL: DefaultBaseURL,

	FlushAfterMs:     DefaultFlushAfterMs,
	FlushAfterLogs:   DefaultFlushAfterLogs,
	RequestTimeoutMs: DefaultRequestTimeoutMs,
	Compress:         false,

	IsLocalDev:     false,
	FallbackTarget: "stdout",
	ConsoleColor:   true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("logship.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, "logship.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c.FlushAfterMs <= 0 {
		return fmtErrorf("flush_after_ms must be positive: %d", c.FlushAfterMs)
	}

	if c.FlushAfterLogs <= 0 {
		return fmtErrorf("flush_after_logs must be positive: %d", c.FlushAfterLogs)
	}

	if c.RequestTimeoutMs <= 0 {
		return fmtErrorf("request_timeout_ms must be positive: %d", c.RequestTimeoutMs)
	}

	if c.FallbackTarget != "stdout" && c.FallbackTarget != "stderr" {
		return fmtErrorf("invalid fallback_target: '%s' (use stdout or stderr)", c.FallbackTarget)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmtErrorf("invalid baselime_url: '%s' (absolute http or https URL required)", c.BaseURL)
	}

	// Routing is only needed when records are actually shipped
	if c.APIKey != "" && !c.IsLocalDev && strings.TrimSpace(c.Dataset) == "" {
		return fmtErrorf("dataset cannot be empty when api_key is set")
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// endpoint returns the ingestion URL for the configured dataset
func (c *Config) endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + url.PathEscape(c.Dataset)
}
