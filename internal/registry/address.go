package registry

import "sort"

// Sentinel keys for records missing one or both address parts. They share the
// index with real addresses so partially addressed buildings stay findable.
// The empty string cannot collide with a street name because empty raw values
// coerce to absent, and -1 cannot collide with a house number because only
// integer-coerced values are indexed.
const (
	NoStreet = ""
	NoNumber = -1
)

// AddressIndex groups record identifiers by street and house number.
// Identifier lists keep store insertion order.
type AddressIndex map[string]map[int][]string

// BuildAddressIndex derives the street/number index from the primary records
// in store. Overflow records do not contribute.
func BuildAddressIndex(store *Store) AddressIndex {
	idx := make(AddressIndex)
	for _, rec := range store.All() {
		street, number := rec.Address()
		byNumber, ok := idx[street]
		if !ok {
			byNumber = make(map[int][]string)
			idx[street] = byNumber
		}
		byNumber[number] = append(byNumber[number], rec.ID())
	}
	return idx
}

// IDs returns the identifiers filed under street and number, or nil when the
// slot is empty.
func (idx AddressIndex) IDs(street string, number int) []string {
	byNumber, ok := idx[street]
	if !ok {
		return nil
	}
	return byNumber[number]
}

// Streets returns every street key in sorted order, the NoStreet sentinel
// included when present.
func (idx AddressIndex) Streets() []string {
	out := make([]string, 0, len(idx))
	for street := range idx {
		out = append(out, street)
	}
	sort.Strings(out)
	return out
}

// Numbers returns the house numbers filed under street in ascending order.
// An unknown street yields nil.
func (idx AddressIndex) Numbers(street string) []int {
	byNumber, ok := idx[street]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(byNumber))
	for number := range byNumber {
		out = append(out, number)
	}
	sort.Ints(out)
	return out
}
