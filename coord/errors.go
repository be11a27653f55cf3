package coord

import "errors"

// Error kinds shared by every package that consumes coordinates. Specific
// failures wrap one of these so callers can test with errors.Is.
var (
	// ErrInvalidInput is returned for malformed requests: bad axis/plane
	// combinations, degenerate arcs, unknown tools and the like.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariant is returned when a switch over a closed set falls through.
	ErrInvariant = errors.New("invariant violation")

	// ErrUnsupported is returned for requests that are well formed but have no
	// defined behavior yet (auxiliary axis mapping, position restore).
	ErrUnsupported = errors.New("unsupported")
)
