// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/eatwhat/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule on one request field.
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"-"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// Errors collects every failed rule of a request. A nil Errors means the
// request is valid.
type Errors []FieldError

func (es Errors) Error() string {
	if len(es) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the first failure as a *models.ValidationError so service
// code can match validation failures with models.IsValidationError.
func (es Errors) Unwrap() error {
	if len(es) == 0 {
		return models.NewValidationError("", "validation failed")
	}
	return models.NewValidationError(es[0].Field, es[0].Message)
}

// Message is the envelope message: the bare rule text for one failure,
// "field: rule" pairs for several.
func (es Errors) Message() string {
	if len(es) == 1 {
		return es[0].Message
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

// Details is the envelope details object. A single failure is flattened.
func (es Errors) Details() map[string]interface{} {
	switch len(es) {
	case 0:
		return nil
	case 1:
		return map[string]interface{}{"field": es[0].Field, "tag": es[0].Tag, "value": es[0].Value}
	default:
		return map[string]interface{}{"fields": []FieldError(es)}
	}
}

// GetValidator returns the shared validator. Field names in errors come from
// the json tag.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("foodkind", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseFoodKind(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("foodstatus", func(fl validator.FieldLevel) bool {
			return models.FoodStatus(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			return models.ValidRating(int(fl.Field().Int()))
		})
	})

	return validate
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(s interface{}) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

var fixedMessages = map[string]string{
	"required":   "%s is required",
	"foodkind":   "%s must be DISH or DRINK",
	"foodstatus": "%s must be ACTIVE, PENDING or HIDDEN",
	"rating":     "%s must be 1 or -1",
	"uuid":       "%s must be a valid UUID",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func message(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tmpl, ok := fixedMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
