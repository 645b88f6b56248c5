package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_CoercesNumerics(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"integer", "5", Int(5)},
		{"integer with decimals", "81.0000", Int(81)},
		{"float just above integer", "81.0000003", Int(81)},
		{"float just below integer", "80.9999997", Int(81)},
		{"genuine float", "81.5", Float(81.5)},
		{"negative near integer", "-3.0000001", Int(-3)},
		{"negative float", "-2.25", Float(-2.25)},
		{"zero", "0", Int(0)},
		{"scientific notation", "1e2", Int(100)},
		{"surrounding whitespace", " 42 ", Int(42)},
		{"non-numeric", "Mannerheimintie", String("Mannerheimintie")},
		{"mixed", "12a", String("12a")},
		{"empty", "", Absent()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(nil, []Field{{Name: "osno1", Raw: tt.raw}})
			assert.Equal(t, tt.want, fieldValue(t, rec, "osno1"))
		})
	}
}

func TestNewRecord_FloatBeyondExactIntegerRange(t *testing.T) {
	// 2^53+2 is representable as float64 but past the exact-integer range,
	// so it must stay a float even though it has no fractional part.
	rec := NewRecord(nil, []Field{{Name: "osno1", Raw: "9007199254740994"}})

	v := fieldValue(t, rec, "osno1")
	assert.Equal(t, KindFloat, v.Kind)
}

func TestNewRecord_IdentifierStaysString(t *testing.T) {
	// A numeric-looking identifier must survive verbatim: coercing "103"
	// or "0421" numerically would corrupt the key.
	tests := []struct {
		name string
		raw  string
	}{
		{"plain digits", "123"},
		{"leading zero", "0421000123"},
		{"decimal lookalike", "103.0"},
		{"real prt", "103100123A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(nil, []Field{{Name: "vtj_prt", Raw: tt.raw}})
			assert.Equal(t, String(tt.raw), fieldValue(t, rec, "vtj_prt"))
			assert.Equal(t, tt.raw, rec.ID())
		})
	}
}

func TestNewRecord_MarkerFieldsStayString(t *testing.T) {
	// Every field whose name contains the marker carries an external key
	// and must never be parsed, however numeric it looks.
	rec := NewRecord(nil, []Field{
		{Name: "kiitun", Raw: "09102300010004"},
		{Name: "rakennustunnus", Raw: "123.000"},
		{Name: "posno", Raw: "00100"},
	})

	assert.Equal(t, String("09102300010004"), fieldValue(t, rec, "kiitun"))
	assert.Equal(t, String("123.000"), fieldValue(t, rec, "rakennustunnus"))
	assert.Equal(t, String("00100"), fieldValue(t, rec, "posno"))
}

func TestNewRecord_MannerheimintieScenario(t *testing.T) {
	rec := NewRecord(nil, []Field{
		{Name: "vtj_prt", Raw: "123"},
		{Name: "katu", Raw: "Mannerheimintie"},
		{Name: "osno1", Raw: "81.0000003"},
	})

	assert.Equal(t, "123", rec.ID())
	street, ok := rec.Street()
	require.True(t, ok)
	assert.Equal(t, "Mannerheimintie", street)
	number, ok := rec.Number()
	require.True(t, ok)
	assert.Equal(t, 81, number)
}

func TestNewRecord_DuplicateFieldName(t *testing.T) {
	// The later value wins, the field position does not move.
	rec := NewRecord(nil, []Field{
		{Name: "vtj_prt", Raw: "1"},
		{Name: "katu", Raw: "Aleksanterinkatu"},
		{Name: "katu", Raw: "Bulevardi"},
	})

	assert.Equal(t, []string{"vtj_prt", "katu"}, rec.FieldNames())
	street, ok := rec.Street()
	require.True(t, ok)
	assert.Equal(t, "Bulevardi", street)
}

func TestRecord_Get_UnknownField(t *testing.T) {
	rec := NewRecord(nil, []Field{{Name: "vtj_prt", Raw: "1"}})
	_, ok := rec.Get("katu")
	assert.False(t, ok)
}

func TestRecord_Address_Sentinels(t *testing.T) {
	tests := []struct {
		name       string
		fields     []Field
		wantStreet string
		wantNumber int
	}{
		{
			"full address",
			[]Field{{Name: "katu", Raw: "Itäkatu"}, {Name: "osno1", Raw: "5"}},
			"Itäkatu", 5,
		},
		{
			"number only",
			[]Field{{Name: "osno1", Raw: "5"}},
			NoStreet, 5,
		},
		{
			"street only",
			[]Field{{Name: "katu", Raw: "Itäkatu"}},
			"Itäkatu", NoNumber,
		},
		{
			"float number drops out",
			[]Field{{Name: "katu", Raw: "Itäkatu"}, {Name: "osno1", Raw: "5.5"}},
			"Itäkatu", NoNumber,
		},
		{
			"textual number drops out",
			[]Field{{Name: "katu", Raw: "Itäkatu"}, {Name: "osno1", Raw: "5b"}},
			"Itäkatu", NoNumber,
		},
		{
			"nothing",
			nil,
			NoStreet, NoNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(nil, tt.fields)
			street, number := rec.Address()
			assert.Equal(t, tt.wantStreet, street)
			assert.Equal(t, tt.wantNumber, number)
		})
	}
}

func TestRecord_PostalCode(t *testing.T) {
	rec := NewRecord(nil, []Field{{Name: "posno", Raw: "00930"}})
	code, ok := rec.PostalCode()
	require.True(t, ok)
	assert.Equal(t, "00930", code)

	rec = NewRecord(nil, []Field{{Name: "vtj_prt", Raw: "1"}})
	_, ok = rec.PostalCode()
	assert.False(t, ok)
}

func TestRecord_CustomProfile(t *testing.T) {
	p := &Profile{
		IdentifierField: "building_id",
		StreetField:     "street",
		NumberField:     "house_no",
		PostalCodeField: "zip",
		StringMarkers:   []string{"_code"},
	}

	rec := NewRecord(p, []Field{
		{Name: "building_id", Raw: "42"},
		{Name: "street", Raw: "Main"},
		{Name: "house_no", Raw: "7.0000001"},
		{Name: "area_code", Raw: "0100"},
	})

	assert.Equal(t, "42", rec.ID())
	number, ok := rec.Number()
	require.True(t, ok)
	assert.Equal(t, 7, number)
	assert.Equal(t, String("0100"), fieldValue(t, rec, "area_code"))
}
