package gml

import (
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NestedStructure(t *testing.T) {
	input := `<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs" xmlns:ak="http://example.fi/ak">
		<gml:featureMember xmlns:gml="http://www.opengis.net/gml">
			<ak:pks_rakennukset>
				<ak:vtj_prt>103285872A</ak:vtj_prt>
				<ak:katu>Mannerheimintie</ak:katu>
			</ak:pks_rakennukset>
		</gml:featureMember>
	</wfs:FeatureCollection>`

	root, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", root.Local())
	require.Len(t, root.Children, 1)

	member := root.Children[0]
	assert.Equal(t, "featureMember", member.Local())
	require.Len(t, member.Children, 1)

	feature := member.Children[0]
	assert.Equal(t, "pks_rakennukset", feature.Local())
	require.Len(t, feature.Children, 2)
	assert.Equal(t, "vtj_prt", feature.Children[0].Local())
	assert.Equal(t, "103285872A", feature.Children[0].Text)
	assert.Equal(t, "katu", feature.Children[1].Local())
	assert.Equal(t, "Mannerheimintie", feature.Children[1].Text)
}

func TestParse_TextStopsAtFirstChild(t *testing.T) {
	input := `<geom>
		<Point><pos>6672245.5 25496750.1</pos></Point>tail</geom>`

	root, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	// Only the leading whitespace before <Point> counts as text.
	assert.Equal(t, "\n\t\t", root.Text)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "6672245.5 25496750.1", root.Children[0].Children[0].Text)
}

func TestParse_EmptyElementHasEmptyText(t *testing.T) {
	root, err := Parse(strings.NewReader(`<r><katu></katu><osno1/></r>`))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "", root.Children[0].Text)
	assert.Equal(t, "", root.Children[1].Text)
	assert.False(t, root.Children[0].HasChildren())
}

func TestParse_DeclaredCharset(t *testing.T) {
	raw := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><r><katu>It\xe4katu</katu></r>")

	root, err := ParseBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, "Itäkatu", root.Children[0].Text)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty input":    "",
		"truncated":      "<root><child>",
		"stray close":    "<root></other>",
		"not xml":        "{\"json\": true}",
		"multiple roots": "<a></a><b></b>",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrMalformed))
		})
	}
}

func TestNode_FirstChild(t *testing.T) {
	root, err := Parse(strings.NewReader(`<r><a/><b/></r>`))
	require.NoError(t, err)

	assert.Equal(t, "a", root.FirstChild().Local())
	assert.Nil(t, root.FirstChild().FirstChild())
}

func TestNode_Find(t *testing.T) {
	input := `<member><feature><geom><Point><pos>1.0 2.0</pos></Point></geom></feature></member>`
	root, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	pos := root.Find("pos")
	require.NotNil(t, pos)
	assert.Equal(t, "1.0 2.0", pos.Text)

	assert.Nil(t, root.Find("missing"))
}

func TestPosCoords(t *testing.T) {
	coords, err := PosCoords("6672245.5 25496750.1")
	require.NoError(t, err)
	assert.Equal(t, []float64{6672245.5, 25496750.1}, coords)

	_, err = PosCoords("   ")
	require.Error(t, err)

	_, err = PosCoords("6672245.5 abc")
	require.Error(t, err)
}
