package specio

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-redshift/spectrum"
)

// Manifest lists the templates of a library.
type Manifest struct {
	Templates []ManifestEntry `yaml:"templates"`

	dir string
}

// ManifestEntry names one template and where to load it from. Exactly one
// of File and URL is set. Unit, when set, overrides the table's unit
// directive.
type ManifestEntry struct {
	Name string `yaml:"name"`
	File string `yaml:"file,omitempty"`
	URL  string `yaml:"url,omitempty"`
	Unit string `yaml:"unit,omitempty"`
}

// ReadManifest parses the YAML manifest at path. Relative File entries are
// resolved against the manifest's directory.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	m.dir = filepath.Dir(path)
	for i, e := range m.Templates {
		if e.File != "" && !filepath.IsAbs(e.File) {
			m.Templates[i].File = filepath.Join(m.dir, e.File)
		}
	}

	return m, nil
}

// ParseManifest parses manifest YAML and validates its entries.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	if len(m.Templates) == 0 {
		return nil, fmt.Errorf("%w: no templates", ErrManifest)
	}

	seen := make(map[string]bool, len(m.Templates))
	for i, e := range m.Templates {
		switch {
		case e.Name == "":
			return nil, fmt.Errorf("%w: entry %d has no name", ErrManifest, i)
		case seen[e.Name]:
			return nil, fmt.Errorf("%w: duplicate name %q", ErrManifest, e.Name)
		case (e.File == "") == (e.URL == ""):
			return nil, fmt.Errorf("%w: %q needs exactly one of file or url", ErrManifest, e.Name)
		}

		if e.Unit != "" {
			if _, err := spectrum.ParseUnit(e.Unit); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrManifest, e.Name, err)
			}
		}

		seen[e.Name] = true
	}

	return &m, nil
}

// Options returns the read options implied by the entry.
func (e ManifestEntry) Options() []Option {
	if e.Unit == "" {
		return nil
	}

	u, err := spectrum.ParseUnit(e.Unit)
	if err != nil {
		return nil
	}

	return []Option{WithUnit(u)}
}
