package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Scalar is a string, number or boolean exactly as written in a document.
// Numbers keep their literal text so re-encoding does not change them.
type Scalar struct {
	v any // string, json.Number or bool
}

// StringValue returns a Scalar holding s.
func StringValue(s string) Scalar { return Scalar{v: s} }

// NumberValue returns a Scalar holding f.
func NumberValue(f float64) Scalar {
	return Scalar{v: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// BoolValue returns a Scalar holding b.
func BoolValue(b bool) Scalar { return Scalar{v: b} }

// ScalarOf converts a decoded JSON value into a Scalar.
// It reports false for objects, arrays and null.
func ScalarOf(v any) (Scalar, bool) {
	switch x := v.(type) {
	case string, json.Number, bool:
		return Scalar{v: x}, true
	case float64:
		return NumberValue(x), true
	case int:
		return Scalar{v: json.Number(strconv.Itoa(x))}, true
	}
	return Scalar{}, false
}

// Interface returns the underlying string, json.Number or bool.
func (s Scalar) Interface() any { return s.v }

// IsNumber reports whether the scalar was written as a JSON number.
func (s Scalar) IsNumber() bool {
	_, ok := s.v.(json.Number)
	return ok
}

// Float returns the numeric value if the scalar is a number.
func (s Scalar) Float() (float64, bool) {
	n, ok := s.v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}

// Truthy reports whether the scalar carries a usable value:
// a non-empty string, a non-zero number or true.
func (s Scalar) Truthy() bool {
	switch x := s.v.(type) {
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	}
	return false
}

// String formats the scalar for display.
func (s Scalar) String() string {
	switch x := s.v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Equal compares two scalars. Numbers compare by value, so 1 and 1.0 are equal.
func (s Scalar) Equal(o Scalar) bool {
	return ValuesEqual(s.v, o.v)
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.v == nil {
		return []byte("null"), nil
	}
	return marshal(s.v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	sc, ok := ScalarOf(v)
	if !ok {
		return fmt.Errorf("expected string, number or boolean, got %s", jsonKind(v))
	}
	*s = sc
	return nil
}

// ScalarPtr returns a pointer to v, for building optional fields.
func ScalarPtr(v Scalar) *Scalar { return &v }

// OptionalEqual compares two optional scalars; two absent values are equal.
func OptionalEqual(a, b *Scalar) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ValuesEqual compares two decoded JSON values. json.Number values compare
// numerically; maps and slices compare element-wise.
func ValuesEqual(a, b any) bool {
	if an, ok := toFloat(a); ok {
		bn, ok := toFloat(b)
		return ok && an == bn
	}
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !ValuesEqual(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !ValuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
