package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"demo/interview/internal/model"
)

// Validator checks input structs against their `validate` tags and reports
// failures keyed by JSON field path.
type Validator struct {
	v *validatorv10.Validate
}

func New() *Validator {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(uniqueTagsValidation, model.OrderMessage{}, model.CreateOrderInput{})
	return &Validator{v: v}
}

// Struct returns nil or a *model.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &model.ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		out.Fields[fieldPath(fe)] = message(fe)
	}
	return out
}

// fieldPath drops the leading struct name: "CreateOrderInput.tags[0]" -> "tags[0]".
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "unique_labels":
		return "labels must be unique"
	}
	return "failed " + fe.Tag() + " check"
}

// uniqueTagsValidation rejects duplicate tag labels on new and ingested orders.
func uniqueTagsValidation(sl validatorv10.StructLevel) {
	var tags []string
	switch in := sl.Current().Interface().(type) {
	case model.OrderMessage:
		tags = in.Tags
	case model.CreateOrderInput:
		tags = in.Tags
	}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			sl.ReportError(tags, "tags", "Tags", "unique_labels", "")
			return
		}
		seen[t] = struct{}{}
	}
}
