package specio

import "errors"

var (
	ErrMalformedRow = errors.New("specio: malformed row")
	ErrEmptyTable   = errors.New("specio: table holds no samples")
	ErrManifest     = errors.New("specio: invalid manifest")
)
