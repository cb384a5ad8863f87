package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// applyDefaults fills zero-valued fields from their `default` tags
func applyDefaults(cfg interface{}) error {
	if err := defaults.Set(cfg); err != nil {
		return sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, "config", "defaults")
	}
	return nil
}

// validateStruct runs the `validate` tags of cfg and folds every failed
// rule into a single configuration error.
func validateStruct(component string, cfg interface{}) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return sigerrors.WrapError(err, sigerrors.ErrorCategoryConfiguration, component, "validate")
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fieldMessage(e))
	}
	return sigerrors.NewConfigurationError(component, "validate", strings.Join(messages, "; ")).
		WithContext("fields", len(validationErrors))
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", e.Field(), e.Param(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", e.Field(), e.Param(), e.Value())
	case "lt":
		return fmt.Sprintf("%s must be less than %s, got %v", e.Field(), e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s, got %v", e.Field(), e.Param(), e.Value())
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s, got %v", e.Field(), e.Param(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", e.Field(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
	}
}
