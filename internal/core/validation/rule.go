package validation

import (
	"context"
	"strings"
)

// Verb selects which requiredness entry applies to a request.
type Verb string

const (
	VerbCreate Verb = "post"
	VerbUpdate Verb = "put"
)

// ParseVerb maps an HTTP method onto a Verb.
func ParseVerb(method string) (Verb, bool) {
	switch v := Verb(strings.ToLower(method)); v {
	case VerbCreate, VerbUpdate:
		return v, true
	default:
		return "", false
	}
}

type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeObject  DataType = "object"
	TypeArray   DataType = "array"
)

// Requiredness is either a fixed flag or a per-verb mapping.
// The zero value means required for every verb.
type Requiredness struct {
	fixed  *bool
	byVerb map[Verb]bool
}

func Required(required bool) Requiredness {
	return Requiredness{fixed: &required}
}

// RequiredOn builds a per-verb requiredness. Verbs missing from m are required.
func RequiredOn(m map[Verb]bool) Requiredness {
	byVerb := make(map[Verb]bool, len(m))
	for verb, required := range m {
		byVerb[Verb(strings.ToLower(string(verb)))] = required
	}
	return Requiredness{byVerb: byVerb}
}

func (r Requiredness) resolve(verb Verb) bool {
	if r.fixed != nil {
		return *r.fixed
	}
	if required, ok := r.byVerb[Verb(strings.ToLower(string(verb)))]; ok {
		return required
	}
	return true
}

// CustomFunc checks what the declarative fields cannot express. A non-empty
// message rejects the value; a non-nil error aborts validation.
type CustomFunc func(ctx context.Context, field string, value any) (string, error)

// FieldRule describes how a single field of a Record is validated.
type FieldRule struct {
	Field         string
	Required      Requiredness
	Type          DataType
	AllowedValues []any
	// CaseInsensitive folds string values and string entries of AllowedValues
	// to lower case before comparing.
	CaseInsensitive bool
	Custom          CustomFunc
}

// Schema is checked in order; the first failing rule wins.
type Schema []FieldRule

// Record is a decoded JSON object. A key holding nil is present.
type Record map[string]any

// Violation is the first rule failure found for a record.
type Violation struct {
	Field   string
	Message string
}

func (v *Violation) Error() string {
	return v.Message
}
