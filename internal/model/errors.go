package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrProfileExists     = errors.New("profile already exists")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	for i, k := range keys {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Fields[k])
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
