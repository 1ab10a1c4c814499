// Package config provides configuration management for the kyotei-edge pipeline.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/kyotei-edge/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("grades", validateGrades)
	_ = v.RegisterValidation("classes", validateClasses)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateGrades validates a confidence-grade list
func validateGrades(fl validator.FieldLevel) bool {
	grades, ok := fl.Field().Interface().([]string)
	if !ok || len(grades) == 0 {
		return false
	}
	for _, g := range grades {
		if !models.ConfidenceGrade(g).IsValid() {
			return false
		}
	}
	return true
}

// validateClasses validates a racer-class list
func validateClasses(fl validator.FieldLevel) bool {
	classes, ok := fl.Field().Interface().([]string)
	if !ok || len(classes) == 0 {
		return false
	}
	for _, c := range classes {
		if !models.RacerClass(c).IsValid() {
			return false
		}
	}
	return true
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Filter.StaticOddsWindow.Max <= cfg.Filter.StaticOddsWindow.Min {
		return fmt.Errorf("filter static_odds_window max must exceed min")
	}
	for vt, w := range cfg.Filter.VenueOddsWindows {
		if w.Max <= w.Min {
			return fmt.Errorf("filter venue_odds_windows[%s] max must exceed min", vt)
		}
	}

	if cfg.Safety.MinBankroll > cfg.Safety.InitialBankroll {
		return fmt.Errorf("safety min_bankroll cannot exceed initial_bankroll")
	}

	if cfg.DatabaseEnabled() {
		if cfg.Database.User == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database user and name are required when a host is configured")
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "grades":
			errMsg += fmt.Sprintf("- Field '%s' must list valid confidence grades (A-E)\n", field)
		case "classes":
			errMsg += fmt.Sprintf("- Field '%s' must list valid racer classes (A1, A2, B1, B2)\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
