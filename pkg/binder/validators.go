package binder

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// httpURLValidator accepts absolute http(s) URLs and the empty string. Pair it
// with `required` when the value can't be blank.
func httpURLValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
