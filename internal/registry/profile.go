package registry

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile designates which fields drive record identity, address lookup, and
// verbatim string preservation. The defaults match the HSY building layer
// (pks_rakennukset); other WFS layers can override them from a YAML file.
type Profile struct {
	// IdentifierField uniquely names a record. Records without it are
	// skipped during flattening.
	IdentifierField string `yaml:"identifier_field" mapstructure:"identifier_field"`
	// PostalCodeField is kept as a string even when numeric-looking, so
	// leading zeros survive.
	PostalCodeField string `yaml:"postal_code_field" mapstructure:"postal_code_field"`
	// StreetField and NumberField feed the address index.
	StreetField string `yaml:"street_field" mapstructure:"street_field"`
	NumberField string `yaml:"number_field" mapstructure:"number_field"`
	// StringMarkers lists substrings that mark a field name as an
	// identifier-like field, stored verbatim. The registry data carries
	// several such fields (kiitun, raktun, ...), hence a marker rather
	// than an enumeration.
	StringMarkers []string `yaml:"string_markers" mapstructure:"string_markers"`
}

// DefaultProfile returns the field designations of the HSY building layer.
func DefaultProfile() *Profile {
	return &Profile{
		IdentifierField: "vtj_prt",
		PostalCodeField: "posno",
		StreetField:     "katu",
		NumberField:     "osno1",
		StringMarkers:   []string{"tun"},
	}
}

// LoadProfile reads field designations from a YAML file. Keys not present in
// the file keep their default values.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read profile %s", path)
	}

	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, eris.Wrap(err, "registry: parse profile")
	}

	if p.IdentifierField == "" {
		return nil, eris.New("registry: profile has empty identifier_field")
	}

	return p, nil
}

// IsStringField reports whether a field's value must be stored as the
// original string regardless of how it coerces: any field whose name contains
// a string marker, plus the identifier and postal-code fields.
func (p *Profile) IsStringField(name string) bool {
	for _, marker := range p.StringMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return name == p.IdentifierField || name == p.PostalCodeField
}
