package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skni-kod/kolo-rest-api/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checker is implemented by payloads with rules spanning several fields.
type checker interface {
	check() map[string]string
}

// Validate runs the struct tag rules of payload and its cross-field rules.
// Every failing field is reported in one validation error.
func Validate(payload any) error {
	fields := map[string]string{}
	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errs.NewBadRequestError(err.Error())
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = fieldMessage(fe)
			}
		}
	}
	if c, ok := payload.(checker); ok {
		for field, msg := range c.check() {
			if _, seen := fields[field]; !seen {
				fields[field] = msg
			}
		}
	}
	if len(fields) > 0 {
		return errs.NewValidationError(fields)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "url", "http_url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "numeric":
		return "Enter a number."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
