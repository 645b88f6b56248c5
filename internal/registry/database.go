package registry

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/gml"
)

// Database is the in-memory building registry: the flattened records, the
// duplicate overflow, and the derived street/number index behind one lookup
// surface. It is immutable once built and safe for concurrent reads.
type Database struct {
	profile *Profile
	store   *Store
	index   AddressIndex
	stats   FlattenStats
}

// FromBytes parses a feature document and builds the registry from it.
// A nil profile selects DefaultProfile.
func FromBytes(data []byte, profile *Profile) (*Database, error) {
	root, err := gml.ParseBytes(data)
	if err != nil {
		return nil, eris.Wrap(err, "parse feature document")
	}
	return FromTree(root, profile), nil
}

// FromTree builds the registry from an already parsed element tree.
func FromTree(root *gml.Node, profile *Profile) *Database {
	if profile == nil {
		profile = DefaultProfile()
	}

	store := NewStore()
	stats := Flatten(root, profile, store)
	db := &Database{
		profile: profile,
		store:   store,
		index:   BuildAddressIndex(store),
		stats:   stats,
	}

	zap.L().Info("registry built",
		zap.String("component", "registry"),
		zap.Int("records", db.store.Len()),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("skipped", stats.Skipped),
		zap.Int("streets", len(db.index)))
	return db
}

// GetRecord returns the primary record for id.
func (db *Database) GetRecord(id string) (*Record, error) {
	return db.store.Get(id)
}

// GetAddress returns the street and house number of the record for id,
// sentinel values standing in for missing parts.
func (db *Database) GetAddress(id string) (string, int, error) {
	rec, err := db.store.Get(id)
	if err != nil {
		return NoStreet, NoNumber, err
	}
	street, number := rec.Address()
	return street, number, nil
}

// RecordsAt returns the records filed at street and number in insertion
// order, or ErrNotFound when the slot is empty.
func (db *Database) RecordsAt(street string, number int) ([]*Record, error) {
	ids := db.index.IDs(street, number)
	if len(ids) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "address %q %d", street, number)
	}
	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := db.store.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Streets returns every indexed street in sorted order.
func (db *Database) Streets() []string {
	return db.index.Streets()
}

// Numbers returns the house numbers indexed under street in ascending order,
// or ErrNotFound for a street the index does not hold.
func (db *Database) Numbers(street string) ([]int, error) {
	numbers := db.index.Numbers(street)
	if numbers == nil {
		return nil, eris.Wrapf(ErrNotFound, "street %q", street)
	}
	return numbers, nil
}

// All returns the primary records in insertion order.
func (db *Database) All() []*Record { return db.store.All() }

// Overflow returns the duplicate-identifier records in encounter order.
func (db *Database) Overflow() []*Record { return db.store.Overflow() }

// Len returns the number of primary records.
func (db *Database) Len() int { return db.store.Len() }

// Stats returns the counters from the flattening pass.
func (db *Database) Stats() FlattenStats { return db.stats }

// Profile returns the field profile the registry was built with.
func (db *Database) Profile() *Profile { return db.profile }
