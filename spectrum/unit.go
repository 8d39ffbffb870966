package spectrum

import (
	"fmt"
	"strings"
)

// Unit identifies the unit of the spectral axis.
type Unit int

const (
	Angstrom Unit = iota
	Nanometer
	Micron
)

// metres per unit.
var unitScale = map[Unit]float64{
	Angstrom:  1e-10,
	Nanometer: 1e-9,
	Micron:    1e-6,
}

// String returns the conventional symbol.
func (u Unit) String() string {
	switch u {
	case Angstrom:
		return "Angstrom"
	case Nanometer:
		return "nm"
	case Micron:
		return "um"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Factor returns the multiplier that converts a value in u to a value in to.
func (u Unit) Factor(to Unit) float64 {
	from, ok1 := unitScale[u]
	dst, ok2 := unitScale[to]
	if !ok1 || !ok2 {
		return 1
	}

	return from / dst
}

// Convert converts v from u to the target unit.
func (u Unit) Convert(v float64, to Unit) float64 {
	if u == to {
		return v
	}

	return v * u.Factor(to)
}

// ParseUnit parses a unit name as found in table headers and config files.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "angstrom", "angstroms", "aa", "a", "å":
		return Angstrom, nil
	case "nm", "nanometer", "nanometers":
		return Nanometer, nil
	case "um", "µm", "micron", "microns", "micrometer":
		return Micron, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := ParseUnit(string(b))
	if err != nil {
		return err
	}

	*u = parsed

	return nil
}
