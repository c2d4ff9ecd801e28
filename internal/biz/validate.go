package biz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// invalidInput builds an ErrInvalidInput carrying a user-facing message.
func invalidInput(format string, args ...interface{}) *errors.Error {
	return errors.BadRequest(ErrInvalidInput.Reason, fmt.Sprintf(format, args...))
}

// validateStruct runs the struct's validate tags and reports the first
// failing field as ErrInvalidInput.
func validateStruct(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalidInput("%v", err).WithCause(err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return invalidInput("%s", msg).WithMetadata(map[string]string{"field": field}).WithCause(err)
}
