package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ValidateRecord runs every rule of schema in order and returns the first
// failure. Rules after the failing one are not evaluated.
func ValidateRecord(ctx context.Context, rec Record, schema Schema, verb Verb) error {
	for _, rule := range schema {
		if err := ValidateField(ctx, rec, verb, rule); err != nil {
			return err
		}
	}
	return nil
}

// ValidateField checks a single field: requiredness, data type, allowed values
// and finally the custom check. It returns a *Violation for rejected input.
func ValidateField(ctx context.Context, rec Record, verb Verb, rule FieldRule) error {
	value, present := rec[rule.Field]
	if !present {
		if rule.Required.resolve(verb) {
			return violationf(rule.Field, "Required property [%s] is missing from the request payload.", rule.Field)
		}
		return nil
	}

	if rule.Type != "" && !hasType(value, rule.Type) {
		return violationf(rule.Field, "The value of property [%s] is not the correct data type. It should be [%s].", rule.Field, rule.Type)
	}

	if rule.AllowedValues != nil && !allowed(value, rule.AllowedValues, rule.CaseInsensitive) {
		return violationf(rule.Field, "The value of property [%s] is invalid. It should be one of %s.", rule.Field, joinValues(rule.AllowedValues))
	}

	if rule.Custom != nil {
		msg, err := rule.Custom(ctx, rule.Field, value)
		if err != nil {
			return fmt.Errorf("custom check %s: %w", rule.Field, err)
		}
		if msg != "" {
			return &Violation{Field: rule.Field, Message: msg}
		}
	}
	return nil
}

func violationf(field, format string, args ...any) *Violation {
	return &Violation{Field: field, Message: fmt.Sprintf(format, args...)}
}

func hasType(value any, want DataType) bool {
	switch want {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber:
		_, ok := toFloat(value)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		if !ok {
			_, ok = value.(Record)
		}
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	default:
		return false
	}
}

func allowed(value any, values []any, caseInsensitive bool) bool {
	if s, ok := value.(string); ok && caseInsensitive {
		value = strings.ToLower(s)
	}
	for _, candidate := range values {
		if s, ok := candidate.(string); ok && caseInsensitive {
			candidate = strings.ToLower(s)
		}
		if equal(value, candidate) {
			return true
		}
	}
	return false
}

// equal compares numbers by value regardless of their Go type, everything
// else by deep equality.
func equal(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, ", ")
}
