// Package validation wraps go-playground/validator and converts its field
// errors into apperrors.ValidationError.
package validation

import (
	"errors"
	"fmt"

	"smartfix/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates s by its `validate` tags. Field names in messages
// are the Go field names.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("field '%s' must be %s %s", fe.Field(), boundWord(fe.Tag()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag()))
		}
	}
	return apperrors.Validation(msgs...)
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
