package continuum

import (
	"fmt"
	"strings"
)

// Family selects the basis functions of a continuum model.
type Family int

const (
	// Linear is a first-degree polynomial; the degree option is ignored.
	Linear Family = iota
	Polynomial
	Chebyshev
	Legendre
)

// String returns the config/CLI name of the family.
func (f Family) String() string {
	switch f {
	case Linear:
		return "linear"
	case Polynomial:
		return "polynomial"
	case Chebyshev:
		return "chebyshev"
	case Legendre:
		return "legendre"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// ParseFamily parses a family name.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "polynomial", "poly":
		return Polynomial, nil
	case "chebyshev", "cheb":
		return Chebyshev, nil
	case "legendre":
		return Legendre, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
	}
}

// basis fills dst with the degree+1 basis functions evaluated at t, where t
// is the wavelength mapped onto [-1, 1].
func (f Family) basis(dst []float64, t float64) {
	if len(dst) == 0 {
		return
	}

	dst[0] = 1
	if len(dst) == 1 {
		return
	}

	dst[1] = t
	for k := 1; k+1 < len(dst); k++ {
		switch f {
		case Chebyshev:
			dst[k+1] = 2*t*dst[k] - dst[k-1]
		case Legendre:
			kf := float64(k)
			dst[k+1] = ((2*kf+1)*t*dst[k] - kf*dst[k-1]) / (kf + 1)
		default:
			dst[k+1] = dst[k] * t
		}
	}
}
