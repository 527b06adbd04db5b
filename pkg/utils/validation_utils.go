package utils

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)

// IsValidPhone reports whether s looks like a dialable phone number.
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

// RegisterValidators adds the custom struct-tag validators used by request DTOs
// to gin's validator engine. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
}
