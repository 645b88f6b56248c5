package registry

import "strconv"

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindAbsent marks a field whose source element carried no text.
	KindAbsent Kind = iota
	// KindString represents a string value.
	KindString
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
)

// Value is one coerced record field: integer, float, string, or absent.
// Values are plain data and safe to copy.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	S    string
}

// Absent returns the absent Value.
func Absent() Value { return Value{Kind: KindAbsent} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, S: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{Kind: KindInt, I64: i} }

// Float returns a float Value.
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }

// IsAbsent reports whether the field carried no value.
func (v Value) IsAbsent() bool { return v.Kind == KindAbsent }

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.S, true
}

// AsInt returns the integer value if Kind is KindInt.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat returns the float value if Kind is KindFloat.
func (v Value) AsFloat() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// String renders the value for display and export. Absent renders empty.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	default:
		return ""
	}
}

// Any returns the value as a plain Go value (nil, string, int64, or float64)
// for row building.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	default:
		return nil
	}
}
