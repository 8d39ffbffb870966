package template

import (
	"fmt"

	"github.com/cwbudde/algo-redshift/spectrum"
)

// Template is a named rest-frame spectrum.
type Template struct {
	Name     string
	Spectrum *spectrum.Spectrum
}

// Library is an ordered collection of uniquely named templates. A Library
// must not be modified while a [Match] call is using it.
type Library struct {
	templates []Template
	index     map[string]int
}

// NewLibrary returns a library holding ts in order.
func NewLibrary(ts ...Template) (*Library, error) {
	lib := &Library{index: make(map[string]int, len(ts))}
	for _, t := range ts {
		if err := lib.Add(t.Name, t.Spectrum); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// Add appends a template. Names must be unique.
func (l *Library) Add(name string, s *spectrum.Spectrum) error {
	if s == nil {
		return fmt.Errorf("%w: %q", ErrNilTemplate, name)
	}

	if l.index == nil {
		l.index = make(map[string]int)
	}

	if _, ok := l.index[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTemplate, name)
	}

	l.index[name] = len(l.templates)
	l.templates = append(l.templates, Template{Name: name, Spectrum: s})

	return nil
}

// Len returns the number of templates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}

	return len(l.templates)
}

// At returns the i-th template.
func (l *Library) At(i int) Template {
	return l.templates[i]
}

// Lookup returns the template called name.
func (l *Library) Lookup(name string) (Template, bool) {
	i, ok := l.index[name]
	if !ok {
		return Template{}, false
	}

	return l.templates[i], true
}

// Names returns the template names in library order.
func (l *Library) Names() []string {
	out := make([]string, len(l.templates))
	for i, t := range l.templates {
		out[i] = t.Name
	}

	return out
}
