package config

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rileyhilliard/sysmon/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their config keys so messages match what
// the user wrote.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the config and returns a CONFIG error describing every
// invalid field. It runs before any sampling starts.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try running the command again.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sysmon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sysmon or lower 'version' in your config.")
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapWithCode(err, errors.ErrConfig, "Config could not be validated", "")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(errors.ErrConfig,
		"Invalid config: "+strings.Join(msgs, "; "),
		suggestionFor(cfg.Path))
}

// fieldMessage turns a validator error into a sentence keyed by the YAML
// path, e.g. "thresholds.cpu.warning (95) must be less than critical (90)".
func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "ltfield":
		return fmt.Sprintf("%s (%v) must be less than %s", field, fe.Value(), strings.ToLower(fe.Param()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got %v)", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (got %q)", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "unique":
		return fmt.Sprintf("%s has duplicate %ss", field, strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func suggestionFor(path string) string {
	if path == "" {
		return "Check your SYSMON_* environment overrides."
	}
	return "Fix the values in " + path + "."
}
