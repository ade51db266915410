// Package validation configures go-playground/validator for request binding
// and service-level forms, and turns its errors into field messages.
package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxCategoryLen = 40

var (
	forms     *validator.Validate
	formsOnce sync.Once
)

// Init applies the shared configuration to gin's binding validator.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Struct validates a form that did not arrive through gin binding.
func Struct(s any) error {
	formsOnce.Do(func() {
		forms = validator.New(validator.WithRequiredStructEnabled())
		configure(forms)
	})
	return forms.Struct(s)
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if utf8.RuneCountInString(s) > maxCategoryLen {
			return false
		}
		return strings.IndexFunc(s, unicode.IsControl) < 0
	})
}

// ToDetails maps binding and validation errors to field messages for the
// error envelope.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}
	var (
		syntax   *json.SyntaxError
		typ      *json.UnmarshalTypeError
		invalids validator.ValidationErrors
	)
	switch {
	case errors.As(err, &syntax), errors.As(err, &typ):
		return map[string]string{"payload": "invalid json"}
	case errors.As(err, &invalids):
		out := make(map[string]string, len(invalids))
		for _, fe := range invalids {
			out[fe.Field()] = message(fe)
		}
		return out
	}
	return map[string]string{"payload": "invalid payload"}
}

func message(fe validator.FieldError) string {
	p := fe.Param()
	unit := " characters long"
	if numeric(fe.Kind()) {
		unit = ""
	}
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + p + unit
	case "max":
		return "must be at most " + p + unit
	case "gte":
		return "must be " + p + " or more"
	case "lte":
		return "must be " + p + " or less"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(p), ", ")
	case "url", "uri":
		return "must be a valid URL"
	case "email":
		return "must be a valid email"
	case "category":
		return "must be a short plain-text label"
	}
	if p != "" {
		return "failed " + fe.Tag() + "=" + p
	}
	return "failed " + fe.Tag()
}

func numeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}
