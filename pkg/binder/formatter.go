package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

const (
	email    = "email"
	gt       = "gt"
	gte      = "gte"
	httpurl  = "httpurl"
	mx       = "max"
	mn       = "min"
	ne       = "ne"
	oneof    = "oneof"
	required = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func plural(word, n string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}

func isNumeric(k reflect.Kind) bool {
	switch k { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// formatBound renders min/max failures. cmp is "less" or "greater".
func formatBound(err validator.FieldError, cmp string) string {
	field := err.Field()
	switch {
	case isNumeric(err.Kind()):
		return fmt.Sprintf("%q must be %s than or equal to %s", field, cmp, err.Param())
	case err.Kind() == reflect.Slice:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, cmp, err.Param(), plural("element", err.Param()))
	default:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, cmp, err.Param(), plural("character", err.Param()))
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, err.Param())
	case httpurl:
		return fmt.Sprintf("%q must be an http or https URL", field)
	case mx:
		return formatBound(err, "less")
	case mn:
		return formatBound(err, "greater")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		valids := make([]string, 0)
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q failed %s validation", field, err.Tag())
	}
}
