//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

const testCollection = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs" xmlns:gml="http://www.opengis.net/gml" xmlns:amk="https://kartta.hsy.fi/geoserver/asuminen_ja_maankaytto">
  <gml:featureMember>
    <amk:pks_rakennukset_paivittyva>
      <amk:vtj_prt>103100123A</amk:vtj_prt>
      <amk:katu>Mannerheimintie</amk:katu>
      <amk:osno1>81.0000003</amk:osno1>
      <amk:posno>00100</amk:posno>
    </amk:pks_rakennukset_paivittyva>
  </gml:featureMember>
  <gml:featureMember>
    <amk:pks_rakennukset_paivittyva>
      <amk:vtj_prt>103100456B</amk:vtj_prt>
      <amk:katu>Mannerheimintie</amk:katu>
      <amk:osno1>83</amk:osno1>
    </amk:pks_rakennukset_paivittyva>
  </gml:featureMember>
  <gml:featureMember>
    <amk:pks_rakennukset_paivittyva>
      <amk:vtj_prt>103100789C</amk:vtj_prt>
      <amk:osno1>5</amk:osno1>
    </amk:pks_rakennukset_paivittyva>
  </gml:featureMember>
</wfs:FeatureCollection>`

func testRegistry(t *testing.T) *registry.Database {
	t.Helper()
	reg, err := registry.FromBytes([]byte(testCollection), nil)
	require.NoError(t, err)
	return reg
}
