package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig validates struct tags and cross-field rules.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return ValidationErrors{{Message: "configuration is nil"}}
	}

	var errs ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Path:    strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: describeFieldError(fe),
			})
		}
	}

	if cfg.Health.DiskWarningPercent >= cfg.Health.DiskErrorPercent {
		errs = append(errs, ValidationError{
			Path:    "Health.DiskWarningPercent",
			Message: "must be lower than Health.DiskErrorPercent",
		})
	}

	if cfg.Cache.Type == CacheTypeRedis && (cfg.Redis == nil || cfg.Redis.URL == "") {
		errs = append(errs, ValidationError{
			Path:    "Redis.URL",
			Message: "is required when cache type is redis",
		})
	}

	if rl := cfg.Health.ReportRateLimit; rl != nil && rl.Enabled && (rl.RequestsPerSecond < 1 || rl.Burst < 1) {
		errs = append(errs, ValidationError{
			Path:    "Health.ReportRateLimit",
			Message: "requestsPerSecond and burst must be positive when enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
}
