package wfs

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrException is returned when the server answers 200 with an OWS
// exception report instead of a feature document.
var ErrException = eris.New("wfs: server exception")

// checkException inspects the response root. GeoServer reports request
// errors as ows:ExceptionReport bodies with status 200, so status checks
// alone are not enough.
func checkException(body []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	root, err := rootElement(dec)
	if err != nil || root == nil {
		// Not parseable here; let the caller's own parser report it.
		return nil
	}

	switch root.Name.Local {
	case "ExceptionReport", "ServiceExceptionReport":
	default:
		return nil
	}

	if text := exceptionText(dec); text != "" {
		return eris.Wrapf(ErrException, "%s", text)
	}
	return ErrException
}

// parseHits reads numberOfFeatures from a resultType=hits response.
func parseHits(body []byte) (int, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	root, err := rootElement(dec)
	if err != nil {
		return 0, eris.Wrap(err, "wfs: parse hits response")
	}
	if root == nil {
		return 0, eris.New("wfs: empty hits response")
	}

	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "numberOfFeatures", "numberMatched":
			n, convErr := strconv.Atoi(attr.Value)
			if convErr != nil {
				return 0, eris.Wrapf(convErr, "wfs: feature count %q", attr.Value)
			}
			return n, nil
		}
	}
	return 0, eris.New("wfs: hits response has no feature count")
}

func rootElement(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

// exceptionText collects the character data of the first ExceptionText or
// ServiceException element.
func exceptionText(dec *xml.Decoder) string {
	var inText bool
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "ExceptionText" || t.Name.Local == "ServiceException" {
				inText = true
			}
		case xml.EndElement:
			if inText && (t.Name.Local == "ExceptionText" || t.Name.Local == "ServiceException") {
				return strings.TrimSpace(sb.String())
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
