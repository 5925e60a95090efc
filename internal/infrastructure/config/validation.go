package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and reports every failing
// field by its config key.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: %s", configKey(fe.Namespace()), describe(fe)))
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}

// configKey turns "Config.Logging.MaxSizeMB" into "logging.max_size_mb".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "hexcolor":
		return fmt.Sprintf("must be a hex color, got %q", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}
