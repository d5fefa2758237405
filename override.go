// FILE: override.go
package logship

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the configuration in place.
// Each override should be in the format "key=value" using the toml key names.
// All overrides are attempted and the errors are reported together, the
// configuration is left unchanged if any override fails.
//
// Example:
//
//	cfg := logship.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "dataset=cloudflare",
//	    "flush_after_logs=50",
//	    "is_local_dev=true",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	next := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(next, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	*c = *next
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("logship: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "logship: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "api_key":
		cfg.APIKey = value
	case "dataset":
		cfg.Dataset = value
	case "service":
		cfg.Service = value
	case "namespace":
		cfg.Namespace = value
	case "baselime_url":
		cfg.BaseURL = value
	case "request_id":
		cfg.RequestID = value
	case "fallback_target":
		cfg.FallbackTarget = value

	case "flush_after_ms":
		return setInt(&cfg.FlushAfterMs, key, value)
	case "flush_after_logs":
		return setInt(&cfg.FlushAfterLogs, key, value)
	case "request_timeout_ms":
		return setInt(&cfg.RequestTimeoutMs, key, value)

	case "compress":
		return setBool(&cfg.Compress, key, value)
	case "is_local_dev":
		return setBool(&cfg.IsLocalDev, key, value)
	case "console_color":
		return setBool(&cfg.ConsoleColor, key, value)

	default:
		return fmtErrorf("unknown config key in override: %s", key)
	}
	return nil
}

func setInt(dst *int64, key, value string) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = b
	return nil
}
