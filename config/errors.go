package config

import (
	"fmt"
	"strings"
)

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string   // error category: "invalid", "load"
	Field    string   // config key (e.g., "max_retry_attempts")
	Message  string   // user-friendly error message (lowercase)
	Action   string   // actionable instruction (lowercase)
	Details  []string // additional details or examples
	wrapped  error
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if len(e.Details) > 0 {
		parts = append(parts, strings.Join(e.Details, "; "))
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying loader error, if any.
func (e *ConfigError) Unwrap() error {
	return e.wrapped
}

// NewInvalidFieldError creates an error for an invalid configuration value.
func NewInvalidFieldError(field, message string, details ...string) *ConfigError {
	return &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
		Action:   fmt.Sprintf("fix %s%s env var or %s in the yaml file", EnvPrefix, strings.ToUpper(field), field),
		Details:  details,
	}
}

// NewLoadError wraps a failure to read or parse a configuration source.
func NewLoadError(source string, err error) *ConfigError {
	return &ConfigError{
		Category: "load",
		Field:    source,
		Message:  err.Error(),
		wrapped:  err,
	}
}
