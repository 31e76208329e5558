package handlers

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

type enumValue interface {
	Valid() bool
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their json names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			v, ok := fl.Field().Interface().(enumValue)
			return ok && v.Valid()
		})
	})
	return validate
}

// validationErrors returns the failed field checks of s, in field order.
func validationErrors(s any) (validator.ValidationErrors, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}
	return errs, nil
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return fieldLabel(e.Field()) + " is required"
	case "max":
		return fieldLabel(e.Field()) + " must not exceed " + e.Param() + " characters"
	default:
		return fieldLabel(e.Field()) + " is invalid"
	}
}
