package registry

import (
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/gml"
)

// FlattenStats counts what a flattening pass saw.
type FlattenStats struct {
	Groups     int // terminal groups visited
	Inserted   int // records that took a primary slot
	Duplicates int // records routed to overflow
	Skipped    int // groups dropped for want of an identifier
}

// WalkGroups calls fn for every terminal group under node, in document order.
//
// A child is a terminal group when its own first child has no children. A
// child whose grandchildren go deeper is descended into instead. A childless
// child is neither, and is passed over.
func WalkGroups(node *gml.Node, fn func(group *gml.Node)) {
	for _, child := range node.Children {
		first := child.FirstChild()
		if first == nil {
			continue
		}
		if first.HasChildren() {
			WalkGroups(child, fn)
			continue
		}
		fn(child)
	}
}

// Flatten walks the element tree depth-first and files every terminal group
// into store as a Record. The group's child elements become the record's
// fields, local element name as field name and element text as raw value.
// Groups without an identifier are counted and dropped, never fatal.
func Flatten(root *gml.Node, profile *Profile, store *Store) FlattenStats {
	if profile == nil {
		profile = DefaultProfile()
	}
	var stats FlattenStats
	log := zap.L().With(zap.String("component", "registry.flatten"))

	WalkGroups(root, func(group *gml.Node) {
		stats.Groups++
		fields := make([]Field, 0, len(group.Children))
		for _, item := range group.Children {
			fields = append(fields, Field{Name: item.Local(), Raw: item.Text})
		}

		rec := NewRecord(profile, fields)
		primary, err := store.Insert(rec)
		switch {
		case err != nil:
			stats.Skipped++
			log.Warn("group has no identifier, skipping",
				zap.String("group", group.Local()),
				zap.Int("fields", len(fields)))
		case primary:
			stats.Inserted++
		default:
			stats.Duplicates++
			log.Debug("duplicate identifier routed to overflow",
				zap.String("id", rec.ID()))
		}
	})
	return stats
}
