package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrPaymentRequired  = errors.New("payment required")
	ErrPaymentProvider  = errors.New("payment provider error")
	ErrInvalidClaimKey  = errors.New("invalid claim key")
	ErrPlacementExpired = errors.New("placement has expired")
)

// ValidationError is returned when input fails validation. Message is safe to
// show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs struct tag validation and reports the first failing field.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return invalidf("%s is required", fe.Field())
	case "max":
		return invalidf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return invalidf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "url", "http_url":
		return invalidf("%s must be a valid URL", fe.Field())
	case "email":
		return invalidf("%s must be a valid email", fe.Field())
	case "oneof":
		return invalidf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt", "gte":
		return invalidf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return invalidf("%s is invalid", fe.Field())
	}
}
