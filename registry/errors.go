package registry

import "errors"

// Configuration errors.
var (
	// ErrInvalidDelimiter indicates a delimiter that collides with the token
	// grammar: word characters and whitespace cannot delimit tokens.
	ErrInvalidDelimiter = errors.New("registry: delimiter must not be a word character or whitespace")

	// ErrNonPositiveIdle indicates Config.IdleAfter is negative.
	ErrNonPositiveIdle = errors.New("registry: idle threshold must be positive")

	// ErrInvalidStride indicates Config.SweepStride is negative.
	ErrInvalidStride = errors.New("registry: sweep stride must be positive")
)
