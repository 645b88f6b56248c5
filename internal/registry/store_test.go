package registry

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(t *testing.T, id string) *Record {
	t.Helper()
	return NewRecord(nil, []Field{{Name: "vtj_prt", Raw: id}})
}

func TestStore_Insert_FirstWriteWins(t *testing.T) {
	s := NewStore()

	first := NewRecord(nil, []Field{
		{Name: "vtj_prt", Raw: "999"},
		{Name: "katu", Raw: "Ensimmäinen"},
	})
	second := NewRecord(nil, []Field{
		{Name: "vtj_prt", Raw: "999"},
		{Name: "katu", Raw: "Toinen"},
	})

	primary, err := s.Insert(first)
	require.NoError(t, err)
	assert.True(t, primary)

	primary, err = s.Insert(second)
	require.NoError(t, err)
	assert.False(t, primary)

	// The primary slot still holds the first record.
	got, err := s.Get("999")
	require.NoError(t, err)
	street, ok := got.Street()
	require.True(t, ok)
	assert.Equal(t, "Ensimmäinen", street)

	// The collision is preserved, not discarded.
	overflow := s.Overflow()
	require.Len(t, overflow, 1)
	street, ok = overflow[0].Street()
	require.True(t, ok)
	assert.Equal(t, "Toinen", street)

	assert.Equal(t, 1, s.Len())
}

func TestStore_Insert_MissingIdentifier(t *testing.T) {
	s := NewStore()

	rec := NewRecord(nil, []Field{{Name: "katu", Raw: "Kaduton"}})
	_, err := s.Insert(rec)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingIdentifier))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Overflow())
}

func TestStore_Get_NotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Get("nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestStore_All_InsertionOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.Insert(testRecord(t, id))
		require.NoError(t, err)
	}

	var ids []string
	for _, rec := range s.All() {
		ids = append(ids, rec.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestStore_Overflow_EncounterOrder(t *testing.T) {
	s := NewStore()
	for _, id := range []string{"x", "y", "x", "y", "x"} {
		_, err := s.Insert(testRecord(t, id))
		require.NoError(t, err)
	}

	var ids []string
	for _, rec := range s.Overflow() {
		ids = append(ids, rec.ID())
	}
	assert.Equal(t, []string{"x", "y", "x"}, ids)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Contains(t *testing.T) {
	s := NewStore()
	_, err := s.Insert(testRecord(t, "1"))
	require.NoError(t, err)

	assert.True(t, s.Contains("1"))
	assert.False(t, s.Contains("2"))
}
