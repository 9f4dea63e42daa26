package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Coerce converts a raw string (CLI flag, form input) into a value of type t.
// Lists and objects are parsed as JSON. A nil type keeps the string.
func Coerce(t Type, raw string) (any, error) {
	var v any
	switch t.(type) {
	case nil, *StringType:
		return raw, nil
	case *IntType, *NumberType:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", raw)
		}
		v = f
	case *BoolType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected bool, got %q", raw)
		}
		v = b
	case *SliceType, *ObjectType:
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("expected JSON for %s: %w", t.Name(), err)
		}
	default:
		v = raw
	}
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsColor reports whether t is the color type.
func IsColor(t Type) bool {
	c, ok := t.(*CustomType)
	return ok && c.name == "color"
}
