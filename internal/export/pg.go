package export

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/db"
	"github.com/paikkatieto/rakennus-cli/internal/gml"
	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

// Column names that are not taken from the profile.
const (
	fieldsColumn = "fields"
	geomColumn   = "geom"
)

// PGOptions configures a PostgreSQL export.
type PGOptions struct {
	Table  string // target table, optionally schema-qualified
	SRID   int    // EWKB SRID for the geometry column; 0 skips the column
	Upsert bool   // INSERT ... ON CONFLICT on the identifier instead of plain COPY
}

// ToPG writes the registry's primary records into a PostgreSQL table.
//
// The column list is profile-driven: identifier, street, house number and
// postal code under their profile names, the remaining fields as one JSON
// column, and optionally an EWKB point geometry re-extracted from the source
// tree. Missing designated fields become NULL.
func ToPG(ctx context.Context, pool db.Pool, reg *registry.Database, root *gml.Node, opts PGOptions) (int64, error) {
	if opts.Table == "" {
		return 0, eris.New("export: no target table")
	}

	profile := reg.Profile()
	cols := []string{
		profile.IdentifierField,
		profile.StreetField,
		profile.NumberField,
		profile.PostalCodeField,
		fieldsColumn,
	}

	var pts map[string]Point
	withGeom := opts.SRID != 0
	if withGeom {
		if root == nil {
			return 0, eris.New("export: geometry requested without a source tree")
		}
		pts = Points(root, profile)
		cols = append(cols, geomColumn)
	}

	records := reg.All()
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row, err := pgRow(rec, profile, pts, opts.SRID, withGeom)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	log := zap.L().With(
		zap.String("component", "export.pg"),
		zap.String("table", opts.Table),
	)

	var (
		n   int64
		err error
	)
	if opts.Upsert {
		n, err = db.BulkUpsert(ctx, pool, db.UpsertConfig{
			Table:        opts.Table,
			Columns:      cols,
			ConflictKeys: []string{profile.IdentifierField},
		}, rows)
	} else {
		n, err = db.CopyFrom(ctx, pool, opts.Table, cols, rows)
	}
	if err != nil {
		return 0, err
	}

	log.Info("records exported",
		zap.Int64("rows", n),
		zap.Bool("upsert", opts.Upsert),
		zap.Bool("geometry", withGeom),
	)
	return n, nil
}

// pgRow builds one COPY row in column-list order.
func pgRow(rec *registry.Record, profile *registry.Profile, pts map[string]Point, srid int, withGeom bool) ([]any, error) {
	extra := make(map[string]any)
	for _, name := range rec.FieldNames() {
		switch name {
		case profile.IdentifierField, profile.StreetField, profile.NumberField, profile.PostalCodeField:
			continue
		}
		v, _ := rec.Get(name)
		if v.IsAbsent() {
			continue
		}
		extra[name] = v.Any()
	}
	blob, err := json.Marshal(extra)
	if err != nil {
		return nil, eris.Wrapf(err, "export: marshal fields for %s", rec.ID())
	}

	row := []any{
		rec.ID(),
		nullString(rec.Street()),
		nullInt(rec.Number()),
		nullString(rec.PostalCode()),
		blob,
	}

	if withGeom {
		var geomVal any
		if pt, ok := pts[rec.ID()]; ok {
			data, err := encodeEWKB(pt, srid)
			if err != nil {
				return nil, err
			}
			geomVal = data
		}
		row = append(row, geomVal)
	}

	return row, nil
}

func nullString(s string, ok bool) any {
	if !ok {
		return nil
	}
	return s
}

func nullInt(n int, ok bool) any {
	if !ok {
		return nil
	}
	return int64(n)
}
