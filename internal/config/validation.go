package config

import (
	"errors"
	"fmt"
	"strings"

	"goxviet/internal/engine"
	"goxviet/internal/inject"
	"goxviet/internal/shortcut"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidConfig) hold for any non-empty set.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig && len(e) > 0
}

// Fields lists the offending field names.
func (e ValidationErrors) Fields() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Field
	}
	return out
}

// ValidateConfig checks every section and reports all problems at once.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateInput(&c.Input)...)
	errs = append(errs, validateToggle(&c.Toggle)...)
	errs = append(errs, validateInjection(&c.Injection)...)
	errs = append(errs, validateExpansion(&c.Expansion)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateInput(in *InputConfig) ValidationErrors {
	var errs ValidationErrors
	if _, err := engine.ParseMethod(in.Method); err != nil {
		errs = append(errs, ValidationError{
			Field:   "input.method",
			Message: fmt.Sprintf("invalid input method: %s (valid: telex, vni)", in.Method),
		})
	}
	return errs
}

func validateToggle(t *ToggleConfig) ValidationErrors {
	var errs ValidationErrors
	if _, err := shortcut.Parse(t.Shortcut); err != nil {
		errs = append(errs, ValidationError{
			Field:   "toggle.shortcut",
			Message: err.Error(),
		})
	}
	return errs
}

func validateInjection(in *InjectionConfig) ValidationErrors {
	var errs ValidationErrors

	if in.CacheTTLMs < 1 || in.CacheTTLMs > 5000 {
		errs = append(errs, *RangeError("injection.cache_ttl_ms", 1, 5000))
	}
	if in.ChunkSize < 1 || in.ChunkSize > 20 {
		errs = append(errs, *RangeError("injection.chunk_size", 1, 20))
	}
	if in.FocusRetries < 0 || in.FocusRetries > 10 {
		errs = append(errs, *RangeError("injection.focus_retries", 0, 10))
	}
	if in.AXRetries < 0 || in.AXRetries > 10 {
		errs = append(errs, *RangeError("injection.ax_retries", 0, 10))
	}
	if in.AXBackoffMs < 0 || in.AXBackoffMs > 100 {
		errs = append(errs, *RangeError("injection.ax_backoff_ms", 0, 100))
	}
	if in.WordDeleteWindowMs < 1 || in.WordDeleteWindowMs > 1000 {
		errs = append(errs, *RangeError("injection.word_delete_window_ms", 1, 1000))
	}

	for app, name := range in.Overrides {
		if strings.TrimSpace(app) == "" {
			errs = append(errs, ValidationError{
				Field:   "injection.overrides",
				Message: "bundle identifier cannot be empty",
			})
			continue
		}
		if _, err := inject.ParseStrategy(name); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("injection.overrides[%s]", app),
				Message: fmt.Sprintf("unknown strategy: %s", name),
			})
		}
	}
	return errs
}

func validateExpansion(x *ExpansionConfig) ValidationErrors {
	var errs ValidationErrors
	if x.DatabasePath == "" {
		errs = append(errs, *RequiredFieldError("expansion.database_path"))
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr", "discard":
	case "file", "both":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "file path is required when output writes to a file",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("invalid log output: %s (valid: stdout, stderr, file, both, discard)", l.Output),
		})
	}

	if l.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Message: "max size must be at least 1 MB",
		})
	}
	if l.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Message: "max backups cannot be negative",
		})
	}
	if l.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_age_days",
			Message: "max age cannot be negative",
		})
	}
	return errs
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
