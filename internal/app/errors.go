package service

import "errors"

var (
	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrRunNotFound is returned for an unknown or evicted run id.
	ErrRunNotFound = errors.New("run not found")
	// ErrRankOutOfRange is returned when a lineup rank is outside the run.
	ErrRankOutOfRange = errors.New("rank out of range")
)
