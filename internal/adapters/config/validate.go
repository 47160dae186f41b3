package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// validate checks the `validate` tags of decoded files. Field names in errors
// use their YAML keys.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateSettings(file *SettingsFile) error {
	fe, err := firstFieldError(validate.Struct(file))
	if fe == nil {
		return err
	}
	if fe.StructNamespace() == "SettingsFile.Store.Backend" {
		return zerr.With(
			zerr.Wrap(domain.ErrUnknownStoreBackend, "invalid settings"),
			"backend", file.Store.Backend,
		)
	}
	return fieldError(fe, "invalid settings")
}

func validateManifest(manifest *Manifest) error {
	fe, err := firstFieldError(validate.Struct(manifest))
	if fe == nil {
		return err
	}
	return fieldError(fe, "invalid manifest")
}

// firstFieldError returns the first failed field of err, or err itself when it
// is not a validation failure.
func firstFieldError(err error) (validator.FieldError, error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, err
	}
	return verrs[0], nil
}

func fieldError(fe validator.FieldError, msg string) error {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	return zerr.With(
		zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, msg), "field", field),
		"rule", fe.Tag(),
	)
}
