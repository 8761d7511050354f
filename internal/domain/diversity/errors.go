package diversity

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotSquare = errors.New("cost matrix must be square")
)
