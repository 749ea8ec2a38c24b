package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in errors come from the json tag.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns a field -> message map, or nil when v is valid.
// Non-field errors (e.g. a nil pointer) are reported under "_".
func Struct(v interface{}) map[string]string {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}
		fields[fe.Field()] = Message(fe)
	}
	return fields
}

// Message renders a human readable message for a single failed rule.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "url", "http_url":
		return "Must be a valid URL."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("Failed the %q rule.", fe.Tag())
	}
}

// SanitizeString trims whitespace and removes null bytes
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
