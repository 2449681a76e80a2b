// Package validation collects field-level validation failures into a single error.
package validation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every field failure collected by a Validator.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "Validation failed: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalid) succeed for any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Details returns the field failures for the response errors member.
func (e *Error) Details() any {
	return e.Fields
}

// Field builds a single-field validation error.
func Field(field, message string) error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validator collects field failures through a chainable API.
// A Validator is not safe for concurrent use.
type Validator struct {
	errs []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value, message string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, message)
	}
	return v
}

// MaxLen fails if the character count of value exceeds max.
func (v *Validator) MaxLen(field, value string, max int, message string) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, message)
	}
	return v
}

// MinItems fails if fewer than min non-blank items are present.
func (v *Validator) MinItems(field string, items []string, min int, message string) *Validator {
	n := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			n++
		}
	}
	if n < min {
		v.add(field, message)
	}
	return v
}

// OneOf fails if value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed []string, message string) *Validator {
	if !slices.Contains(allowed, value) {
		v.add(field, message)
	}
	return v
}

// Check adds a failure when ok is false.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.add(field, message)
	}
	return v
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns an *Error when any rule failed, nil otherwise.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &Error{Fields: slices.Clone(v.errs)}
}

func (v *Validator) add(field, message string) {
	if message == "" {
		message = fmt.Sprintf("%s is invalid", field)
	}
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}
