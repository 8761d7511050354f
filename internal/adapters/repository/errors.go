package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("player not found")
	ErrDuplicate     = errors.New("player already exists")
	ErrInvalidName   = errors.New("invalid player name")
	ErrInvalidPair   = errors.New("synergy pair must name two different players")
	ErrInvalidRecord = errors.New("invalid csv record")
)
