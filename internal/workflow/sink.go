package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-redshift/specio"
	"github.com/cwbudde/algo-redshift/spectrum"
)

// Sink receives intermediate spectra of a run.
type Sink interface {
	Show(label string, s *spectrum.Spectrum) error
}

// NopSink discards everything.
type NopSink struct{}

// Show implements [Sink].
func (NopSink) Show(string, *spectrum.Spectrum) error { return nil }

// CSVSink writes every spectrum to <Dir>/<label>.csv.
type CSVSink struct {
	Dir string
}

// Show implements [Sink].
func (c CSVSink) Show(label string, s *spectrum.Spectrum) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(c.Dir, sanitize(label)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := specio.WriteCSV(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}

func sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
}
