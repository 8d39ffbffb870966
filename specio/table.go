package specio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/cwbudde/algo-redshift/spectrum"
)

type readConfig struct {
	unit     *spectrum.Unit
	fluxUnit string
}

// Option configures table reading.
type Option func(*readConfig)

// WithUnit overrides any unit directive in the table.
func WithUnit(u spectrum.Unit) Option {
	return func(c *readConfig) {
		c.unit = &u
	}
}

// WithFluxUnit overrides any flux_unit directive in the table.
func WithFluxUnit(label string) Option {
	return func(c *readConfig) {
		c.fluxUnit = label
	}
}

// ReadFile reads the table at path.
func ReadFile(path string, opts ...Option) (*spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadTable(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// ReadTable parses a spectrum table from r. Either every row carries an
// uncertainty column or none does.
func ReadTable(r io.Reader, opts ...Option) (*spectrum.Spectrum, error) {
	var cfg readConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var (
		wl, fx, unc []float64
		unit        = spectrum.Angstrom
		fluxUnit    string
		columns     int
		headerSeen  bool
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "#") {
			key, value, ok := directive(text)
			if !ok {
				continue
			}

			switch key {
			case "unit":
				u, err := spectrum.ParseUnit(value)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				unit = u
			case "flux_unit":
				fluxUnit = value
			}

			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})

		values, err := parseRow(fields)
		if err != nil {
			if len(wl) == 0 && !headerSeen {
				headerSeen = true
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}

		if columns == 0 {
			columns = len(values)
		}
		if len(values) != columns {
			return nil, fmt.Errorf("%w: line %d: %d columns, expected %d", ErrMalformedRow, line, len(values), columns)
		}

		wl = append(wl, values[0])
		fx = append(fx, values[1])
		if columns == 3 {
			unc = append(unc, values[2])
		}
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(wl) == 0 {
		return nil, ErrEmptyTable
	}

	if cfg.unit != nil {
		unit = *cfg.unit
	}
	if cfg.fluxUnit != "" {
		fluxUnit = cfg.fluxUnit
	}

	return spectrum.New(wl, fx, unc, spectrum.WithUnit(unit), spectrum.WithFluxUnit(fluxUnit))
}

func directive(text string) (key, value string, ok bool) {
	body := strings.TrimSpace(strings.TrimLeft(text, "#"))
	key, value, ok = strings.Cut(body, ":")
	if !ok {
		return "", "", false
	}

	return strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value), true
}

func parseRow(fields []string) ([]float64, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return nil, fmt.Errorf("%d columns", len(fields))
	}

	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// WriteCSV writes s as a comma separated table with unit directives and a
// column header. The output can be read back with [ReadTable].
func WriteCSV(w io.Writer, s *spectrum.Spectrum) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# unit: %s\n", s.Unit())
	if s.FluxUnit() != "" {
		fmt.Fprintf(bw, "# flux_unit: %s\n", s.FluxUnit())
	}

	cw := csv.NewWriter(bw)
	header := []string{"wavelength", "flux"}
	if s.HasUncertainty() {
		header = append(header, "uncertainty")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < s.Len(); i++ {
		wl, fx, u := s.At(i)
		row[0] = format(wl)
		row[1] = format(fx)
		if s.HasUncertainty() {
			row[2] = format(u)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return bw.Flush()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
