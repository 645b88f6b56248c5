package export

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPG_Copy(t *testing.T) {
	reg, root := buildFixture(t)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"vtj_prt", "katu", "osno1", "posno", "fields"}
	mock.ExpectCopyFrom(pgx.Identifier{"rakennukset"}, cols).WillReturnResult(3)

	n, err := ToPG(context.Background(), mock, reg, root, PGOptions{Table: "rakennukset"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToPG_CopyWithGeometry(t *testing.T) {
	reg, root := buildFixture(t)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"vtj_prt", "katu", "osno1", "posno", "fields", "geom"}
	mock.ExpectCopyFrom(pgx.Identifier{"hsy", "rakennukset"}, cols).WillReturnResult(3)

	n, err := ToPG(context.Background(), mock, reg, root, PGOptions{
		Table: "hsy.rakennukset",
		SRID:  DefaultSRID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToPG_Upsert(t *testing.T) {
	reg, root := buildFixture(t)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"vtj_prt", "katu", "osno1", "posno", "fields"}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_rakennukset"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_rakennukset"}, cols).
		WillReturnResult(3)
	mock.ExpectExec(`INSERT INTO "rakennukset" .* ON CONFLICT \("vtj_prt"\) DO UPDATE SET "katu" = EXCLUDED\."katu"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))
	mock.ExpectCommit()

	n, err := ToPG(context.Background(), mock, reg, root, PGOptions{
		Table:  "rakennukset",
		Upsert: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToPG_NoTable(t *testing.T) {
	reg, root := buildFixture(t)

	_, err := ToPG(context.Background(), nil, reg, root, PGOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target table")
}

func TestToPG_GeometryWithoutTree(t *testing.T) {
	reg, _ := buildFixture(t)

	_, err := ToPG(context.Background(), nil, reg, nil, PGOptions{
		Table: "rakennukset",
		SRID:  DefaultSRID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a source tree")
}

func TestPGRow_DesignatedAndRemainingFields(t *testing.T) {
	reg, root := buildFixture(t)
	pts := Points(root, reg.Profile())

	rec, err := reg.GetRecord("103100123A")
	require.NoError(t, err)

	row, err := pgRow(rec, reg.Profile(), pts, DefaultSRID, true)
	require.NoError(t, err)
	require.Len(t, row, 6)

	assert.Equal(t, "103100123A", row[0])
	assert.Equal(t, "Mannerheimintie", row[1])
	assert.Equal(t, int64(5), row[2])
	assert.Equal(t, "00100", row[3])

	var extra map[string]any
	require.NoError(t, json.Unmarshal(row[4].([]byte), &extra))
	assert.Equal(t, map[string]any{"kayttark": float64(39)}, extra)

	assert.NotNil(t, row[5])
}

func TestPGRow_MissingPartsAreNull(t *testing.T) {
	reg, root := buildFixture(t)
	pts := Points(root, reg.Profile())

	rec, err := reg.GetRecord("103100789C")
	require.NoError(t, err)

	row, err := pgRow(rec, reg.Profile(), pts, DefaultSRID, true)
	require.NoError(t, err)
	require.Len(t, row, 6)

	assert.Equal(t, "103100789C", row[0])
	assert.Nil(t, row[1]) // no street
	assert.Equal(t, int64(3), row[2])
	assert.Nil(t, row[3]) // no postal code
	assert.Nil(t, row[5]) // no geometry
}
