// Package gml parses WFS feature-collection documents into a navigable
// element tree. The tree mirrors the source document one element per node;
// interpretation of the nodes (which groups are records, which tags are
// fields) belongs to the registry package.
package gml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrMalformed is returned when the input cannot be parsed as a well-formed
// XML document. The build that hit it cannot proceed.
var ErrMalformed = eris.New("gml: malformed document")

// Node is one element of a parsed document.
//
// Text holds only the character data between the element's start tag and its
// first child element. That is the portion the flattening rules are defined
// over; trailing data between children is discarded.
type Node struct {
	Name     xml.Name
	Text     string
	Children []*Node
}

// Local returns the element name with any namespace stripped.
func (n *Node) Local() string {
	return n.Name.Local
}

// FirstChild returns the first child element, or nil for a leaf.
func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// HasChildren reports whether the node has any child elements.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Find returns the first descendant (depth-first, document order) whose local
// name matches, or nil.
func (n *Node) Find(local string) *Node {
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
		if m := c.Find(local); m != nil {
			return m
		}
	}
	return nil
}

// Parse reads an XML document and returns its root element.
//
// Character sets beyond UTF-8 are handled via the document's declared
// encoding; feature services in this region still emit ISO-8859-1 dumps.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "gml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(ErrMalformed, "read token: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name}
			if len(stack) == 0 {
				if root != nil {
					return nil, eris.Wrap(ErrMalformed, "multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, eris.Wrap(ErrMalformed, "unbalanced end element")
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue // prolog or trailing whitespace
			}
			current := stack[len(stack)-1]
			if len(current.Children) == 0 {
				current.Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, eris.Wrap(ErrMalformed, "no root element")
	}
	if len(stack) != 0 {
		return nil, eris.Wrap(ErrMalformed, "unclosed elements at EOF")
	}

	return root, nil
}

// ParseBytes parses an in-memory document.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// PosCoords parses the space-separated coordinate list of a gml:pos element.
func PosCoords(text string) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, eris.New("gml: empty pos element")
	}
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "gml: pos coordinate %q", f)
		}
		coords[i] = v
	}
	return coords, nil
}
