package engine

import "errors"

// Sentinel error kinds for this package.
var (
	ErrTooManyPartitions = errors.New("too many partitions to enumerate")
)
