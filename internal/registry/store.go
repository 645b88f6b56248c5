package registry

import "github.com/rotisserie/eris"

// ErrNotFound is returned by lookups for identifiers or addresses the
// database does not hold. Callers are expected to handle it.
var ErrNotFound = eris.New("registry: not found")

// ErrMissingIdentifier is returned when a record cannot be inserted because
// it has no primary identifier to key on.
var ErrMissingIdentifier = eris.New("registry: record has no identifier")

// Store holds records keyed by their primary identifier, first-write-wins.
//
// Upstream emits the occasional duplicate identifier; the first record seen
// keeps the primary slot and every later arrival is appended to an overflow
// list in encounter order, so nothing is overwritten and nothing is lost.
// Insertion order is preserved for iteration.
type Store struct {
	records  map[string]*Record
	order    []string
	overflow []*Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Insert files rec under its identifier. The returned bool is true when the
// record took the primary slot and false when it was routed to overflow.
func (s *Store) Insert(rec *Record) (bool, error) {
	id := rec.ID()
	if id == "" {
		return false, ErrMissingIdentifier
	}

	if _, exists := s.records[id]; exists {
		s.overflow = append(s.overflow, rec)
		return false, nil
	}

	s.records[id] = rec
	s.order = append(s.order, id)
	return true, nil
}

// Get returns the primary record for id. Overflow is never searched.
func (s *Store) Get(id string) (*Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "identifier %q", id)
	}
	return rec, nil
}

// Contains reports whether id holds a primary slot.
func (s *Store) Contains(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Len returns the number of primary records.
func (s *Store) Len() int { return len(s.records) }

// All returns the primary records in insertion order.
func (s *Store) All() []*Record {
	out := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Overflow returns the records whose identifier collided with an earlier
// insert, in encounter order.
func (s *Store) Overflow() []*Record {
	return s.overflow
}
