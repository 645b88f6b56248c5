//go:build !integration

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paikkatieto/rakennus-cli/internal/snapshot"
)

func TestLookupByStreet(t *testing.T) {
	reg := testRegistry(t)

	var buf bytes.Buffer
	require.NoError(t, lookupByStreet(&buf, reg, "Mannerheimintie"))

	out := buf.String()
	assert.Contains(t, out, "NUMBER")
	assert.Contains(t, out, "81")
	assert.Contains(t, out, "103100123A")
	assert.Contains(t, out, "2 record(s) on Mannerheimintie")
}

func TestLookupByStreet_Unknown(t *testing.T) {
	reg := testRegistry(t)

	var buf bytes.Buffer
	err := lookupByStreet(&buf, reg, "Aleksanterinkatu")
	require.Error(t, err)
}

func TestFormatRecord(t *testing.T) {
	reg := testRegistry(t)
	rec, err := reg.GetRecord("103100123A")
	require.NoError(t, err)

	var buf bytes.Buffer
	formatRecord(&buf, rec)

	out := buf.String()
	assert.Contains(t, out, "vtj_prt")
	assert.Contains(t, out, "103100123A")
	assert.Contains(t, out, "posno")
	assert.Contains(t, out, "00100")
}

func TestLoadDocument_FromSnapshot(t *testing.T) {
	withTestConfig(t)
	cfg.Snapshot.Path = filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()

	st, err := openSnapshots(ctx)
	require.NoError(t, err)
	snap, err := st.Save(ctx, snapshot.Meta{Layer: "test:layer", Records: 3}, []byte(testCollection))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	doc, err := loadDocument(ctx, "", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte(testCollection), doc)
}
