package enumerate

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrSizeMismatch   = errors.New("roster size does not match team sizes")
	ErrInvalidSize    = errors.New("team size must be positive")
	ErrDuplicateIndex = errors.New("duplicate participant index")
	ErrInvalidBranch  = errors.New("invalid first team for branch")
	ErrUnknownMode    = errors.New("unknown enumeration mode")
)
