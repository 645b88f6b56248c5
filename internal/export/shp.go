package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/gml"
	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

// ShapefileStats counts what a shapefile export wrote.
type ShapefileStats struct {
	Written int // records with geometry, written as points
	Skipped int // records without a parseable coordinate pair
}

// ToShapefile writes the registry's primary records as a POINT shapefile with
// identifier, street, house number and postal code attribute columns. Only
// records whose source group carried a coordinate pair are written; the rest
// are counted as skipped. go-shp creates the .shx and .dbf next to path.
func ToShapefile(path string, reg *registry.Database, root *gml.Node) (ShapefileStats, error) {
	var stats ShapefileStats
	if root == nil {
		return stats, eris.New("export: shapefile needs the source tree for geometry")
	}

	pts := Points(root, reg.Profile())

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return stats, eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("VTJ_PRT", 40),
		shp.StringField("KATU", 80),
		shp.NumberField("OSNO1", 10),
		shp.StringField("POSNO", 10),
	})

	for _, rec := range reg.All() {
		pt, ok := pts[rec.ID()]
		if !ok {
			stats.Skipped++
			continue
		}

		row := int(w.Write(&shp.Point{X: pt.X, Y: pt.Y}))

		if err := w.WriteAttribute(row, 0, rec.ID()); err != nil {
			return stats, eris.Wrapf(err, "export: write identifier for %s", rec.ID())
		}
		if street, ok := rec.Street(); ok {
			if err := w.WriteAttribute(row, 1, street); err != nil {
				return stats, eris.Wrapf(err, "export: write street for %s", rec.ID())
			}
		}
		if number, ok := rec.Number(); ok {
			if err := w.WriteAttribute(row, 2, number); err != nil {
				return stats, eris.Wrapf(err, "export: write house number for %s", rec.ID())
			}
		}
		if posno, ok := rec.PostalCode(); ok {
			if err := w.WriteAttribute(row, 3, posno); err != nil {
				return stats, eris.Wrapf(err, "export: write postal code for %s", rec.ID())
			}
		}

		stats.Written++
	}

	zap.L().Info("shapefile written",
		zap.String("component", "export.shp"),
		zap.String("path", path),
		zap.Int("written", stats.Written),
		zap.Int("skipped", stats.Skipped),
	)
	return stats, nil
}
