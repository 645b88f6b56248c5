package registry

import (
	"math"
	"strconv"
	"strings"
)

// Values that round-trip exactly through float64; larger magnitudes stay
// floats rather than silently losing digits in the int conversion.
const maxExactInt = float64(1 << 53)

// intEpsilon is how close a parsed float must be to its nearest integer to
// count as one. Upstream serializes integers as floats and some pick up
// numerical noise on the way (81 arrives as "81.0000003").
const intEpsilon = 1e-6

// Field is one tag/text pair lifted from a terminal group, in document order.
type Field struct {
	Name string
	Raw  string
}

// Record is one flattened building record. The field set is data-driven, so
// fields live in a map with typed accessors for the designated ones. Records
// are immutable once built.
type Record struct {
	profile *Profile
	names   []string
	fields  map[string]Value
}

// NewRecord coerces a terminal group's raw fields into a Record.
//
// Each non-empty value is tried as a float; failures stay strings, successes
// within intEpsilon of an integer become integers, the rest stay floats.
// Identifier-like fields (Profile.IsStringField) are then overwritten with
// the original raw string no matter what the numeric pass produced — they may
// start with zeros that a float round trip would destroy. Empty raw values
// are stored absent without any coercion attempt.
func NewRecord(p *Profile, fields []Field) *Record {
	if p == nil {
		p = DefaultProfile()
	}

	r := &Record{
		profile: p,
		names:   make([]string, 0, len(fields)),
		fields:  make(map[string]Value, len(fields)),
	}

	for _, f := range fields {
		if _, seen := r.fields[f.Name]; !seen {
			r.names = append(r.names, f.Name)
		}
		r.fields[f.Name] = coerceField(f.Name, f.Raw, p)
	}

	return r
}

// coerceField applies the numeric pass and then the string-field override.
func coerceField(name, raw string, p *Profile) Value {
	if raw == "" {
		return Absent()
	}
	if p.IsStringField(name) {
		return String(raw)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return String(raw)
	}

	nearest := math.Round(f)
	if math.Abs(f-nearest) < intEpsilon && math.Abs(nearest) < maxExactInt {
		return Int(int64(nearest))
	}
	return Float(f)
}

// Get returns the value of a field by name.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// FieldNames returns the record's field names in document order.
func (r *Record) FieldNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// ID returns the primary identifier, or "" when the record has none.
func (r *Record) ID() string {
	v, ok := r.fields[r.profile.IdentifierField]
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// Street returns the street name when present as a string.
func (r *Record) Street() (string, bool) {
	v, ok := r.fields[r.profile.StreetField]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Number returns the house number when present as an integer.
func (r *Record) Number() (int, bool) {
	v, ok := r.fields[r.profile.NumberField]
	if !ok {
		return 0, false
	}
	n, ok := v.AsInt()
	return int(n), ok
}

// PostalCode returns the postal code when present.
func (r *Record) PostalCode() (string, bool) {
	v, ok := r.fields[r.profile.PostalCodeField]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Address returns the record's (street, house number) pair, substituting
// NoStreet / NoNumber for whichever part is missing.
func (r *Record) Address() (string, int) {
	street := NoStreet
	if s, ok := r.Street(); ok {
		street = s
	}
	number := NoNumber
	if n, ok := r.Number(); ok {
		number = n
	}
	return street, number
}
