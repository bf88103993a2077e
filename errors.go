package nickdb

import "errors"

var (
	// ErrNilSource indicates New was called without a Source.
	ErrNilSource = errors.New("nickdb: source is nil")
)
