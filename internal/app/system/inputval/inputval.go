// internal/app/system/inputval/inputval.go

// Package inputval validates decoded request bodies with
// go-playground/validator and turns failures into readable, per-field
// messages.
//
// Struct fields use `validate` tags for rules and an optional `label` tag
// for the name shown in messages. The reported field name is the json tag.
//
// Custom rules:
//   - role: one of the registrable user roles
//   - collectionstatus: a known collection status
//   - intereststatus: a status a collector may set on a material interest
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/pipapal/internal/app/system/respond"
	"github.com/dalemusser/pipapal/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects every failure from one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when valid, otherwise a 400 validation error.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	fields := make([]respond.FieldError, len(r.Errors))
	for i, e := range r.Errors {
		fields[i] = respond.FieldError{Field: e.Field, Message: e.Message}
	}
	return respond.Validation(fields)
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("collectionstatus", func(fl validator.FieldLevel) bool {
			return contains(models.CollectionStatuses, fl.Field().String())
		})
		_ = v.RegisterValidation("intereststatus", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.InterestAccepted || s == models.InterestRejected || s == models.InterestCompleted
		})
		instance = v
	})
	return instance
}

// Validate checks v (a struct or pointer to struct) against its tags.
func Validate(v any) *Result {
	res := &Result{}
	err := engine().Struct(v)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Message: message(fe, label(t, fe)),
		})
	}
	return res
}

func label(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
		}
	}
	return fe.Field()
}

func message(fe validator.FieldError, label string) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "role":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.Roles, ", "))
	case "collectionstatus":
		return label + " is not a valid collection status."
	case "intereststatus":
		return fmt.Sprintf("%s must be one of: %s, %s, %s.", label,
			models.InterestAccepted, models.InterestRejected, models.InterestCompleted)
	}
	return label + " is invalid."
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
