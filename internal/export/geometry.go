// Package export writes a built registry out to external stores: a PostgreSQL
// table, an ESRI shapefile, or an xlsx workbook. Geometry does not survive
// flattening (a record's geometry field is just the text before the first
// geometry child, usually empty), so exporters that need coordinates walk the
// parsed element tree again.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/paikkatieto/rakennus-cli/internal/gml"
	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

// DefaultSRID is the projected coordinate system of the HSY building layer
// (ETRS-GK25).
const DefaultSRID = 3879

// Point is one projected coordinate pair lifted from a group's geometry
// element.
type Point struct {
	X, Y float64
}

// Points maps record identifiers to the coordinate pair of their group's
// geometry element. Only the first group per identifier counts, matching the
// record the store keeps as primary; groups without a parseable position are
// simply absent from the map.
func Points(root *gml.Node, profile *registry.Profile) map[string]Point {
	if profile == nil {
		profile = registry.DefaultProfile()
	}

	pts := make(map[string]Point)
	seen := make(map[string]bool)

	registry.WalkGroups(root, func(group *gml.Node) {
		var id string
		for _, item := range group.Children {
			if item.Local() == profile.IdentifierField {
				id = item.Text
				break
			}
		}
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		pos := findPos(group)
		if pos == "" {
			return
		}
		coords, err := gml.PosCoords(pos)
		if err != nil || len(coords) < 2 {
			return
		}
		pts[id] = Point{X: coords[0], Y: coords[1]}
	})

	return pts
}

// findPos returns the text of the group's position element. GML 3 carries
// gml:pos; GML 2 carries gml:coordinates with comma-separated members, which
// are normalized to the pos form.
func findPos(group *gml.Node) string {
	if pos := group.Find("pos"); pos != nil {
		return pos.Text
	}
	if c := group.Find("coordinates"); c != nil {
		return strings.ReplaceAll(c.Text, ",", " ")
	}
	return ""
}

// encodeEWKB converts a point to EWKB bytes with the given SRID.
func encodeEWKB(pt Point, srid int) ([]byte, error) {
	g := geom.NewPointFlat(geom.XY, []float64{pt.X, pt.Y}).SetSRID(srid)
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "export: encode EWKB")
	}
	return data, nil
}
