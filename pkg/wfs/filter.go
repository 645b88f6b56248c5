package wfs

import (
	"encoding/xml"

	"github.com/rotisserie/eris"
)

// Filter is an ogc:Filter expression in WFS 1.1.0 key-value encoding.
type Filter struct {
	like *propertyIsLike
}

// PropertyIsLike matches features whose property value is LIKE literal.
// The literal is passed through untouched; callers supply their own
// wildcards ("%" multi, "_" single, "\" escape) when pattern matching is
// wanted.
func PropertyIsLike(property, literal string) *Filter {
	return &Filter{
		like: &propertyIsLike{
			WildCard:   "%",
			SingleChar: "_",
			EscapeChar: `\`,
			Property:   property,
			Literal:    literal,
		},
	}
}

// Encode renders the filter as the XML fragment carried in the request's
// filter parameter.
func (f *Filter) Encode() (string, error) {
	env := filterEnvelope{
		NS:   "http://www.opengis.net/ogc",
		Like: f.like,
	}
	out, err := xml.Marshal(env)
	if err != nil {
		return "", eris.Wrap(err, "wfs: encode filter")
	}
	return string(out), nil
}

type filterEnvelope struct {
	XMLName xml.Name        `xml:"ogc:Filter"`
	NS      string          `xml:"xmlns:ogc,attr"`
	Like    *propertyIsLike `xml:",omitempty"`
}

type propertyIsLike struct {
	XMLName    xml.Name `xml:"ogc:PropertyIsLike"`
	WildCard   string   `xml:"wildCard,attr"`
	SingleChar string   `xml:"singleChar,attr"`
	EscapeChar string   `xml:"escapeChar,attr"`
	Property   string   `xml:"ogc:PropertyName"`
	Literal    string   `xml:"ogc:Literal"`
}
