package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attribute reads one DBF attribute, trimming the padding go-shp leaves in
// fixed-width columns.
func attribute(r *shp.Reader, n int) string {
	return strings.TrimSpace(strings.TrimRight(r.Attribute(n), "\x00"))
}

func TestToShapefile_WritesPointsWithAttributes(t *testing.T) {
	reg, root := buildFixture(t)
	path := filepath.Join(t.TempDir(), "rakennukset.shp")

	stats, err := ToShapefile(path, reg, root)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Skipped)

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	require.True(t, r.Next())
	_, shape := r.Shape()
	pt, ok := shape.(*shp.Point)
	require.True(t, ok)
	assert.InDelta(t, 25496640.5, pt.X, 1e-9)
	assert.InDelta(t, 6673123.25, pt.Y, 1e-9)
	assert.Equal(t, "103100123A", attribute(r, 0))
	assert.Equal(t, "Mannerheimintie", attribute(r, 1))
	assert.Equal(t, "5", attribute(r, 2))
	assert.Equal(t, "00100", attribute(r, 3))

	require.True(t, r.Next())
	_, shape = r.Shape()
	pt, ok = shape.(*shp.Point)
	require.True(t, ok)
	assert.InDelta(t, 25497000.0, pt.X, 1e-9)
	assert.Equal(t, "103100456B", attribute(r, 0))
	assert.Equal(t, "Kaivokatu", attribute(r, 1))
	assert.Equal(t, "8", attribute(r, 2))
	assert.Equal(t, "", attribute(r, 3)) // no postal code filed

	assert.False(t, r.Next())
}

func TestToShapefile_FieldNames(t *testing.T) {
	reg, root := buildFixture(t)
	path := filepath.Join(t.TempDir(), "out.shp")

	_, err := ToShapefile(path, reg, root)
	require.NoError(t, err)

	r, err := shp.Open(path)
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck

	fields := r.Fields()
	require.Len(t, fields, 4)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	assert.Equal(t, []string{"VTJ_PRT", "KATU", "OSNO1", "POSNO"}, names)
}

func TestToShapefile_NoTree(t *testing.T) {
	reg, _ := buildFixture(t)

	_, err := ToShapefile(filepath.Join(t.TempDir(), "out.shp"), reg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source tree")
}
