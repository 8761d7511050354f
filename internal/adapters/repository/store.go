// Package repository holds the roster and synergy stores.
//
// Both stores keep their state in memory and, when configured with a file,
// rewrite a flat CSV file after every mutation. Callers read snapshots; the
// engine never sees a store directly.
package repository

import (
	"context"

	"github.com/okian/lineup/internal/domain/model"
)

// RosterStore owns the registered players.
type RosterStore interface {
	// List returns every player ordered by id.
	List(ctx context.Context) ([]model.Participant, error)

	// Get returns the player with the given name or ErrNotFound.
	Get(ctx context.Context, name string) (model.Participant, error)

	// Add registers a new player. Returns ErrDuplicate if the name is taken.
	Add(ctx context.Context, name string, rating int) (model.Participant, error)

	// UpdateRating sets a player's rating.
	UpdateRating(ctx context.Context, name string, rating int) (model.Participant, error)

	// Remove deletes a player and returns the removed record.
	Remove(ctx context.Context, name string) (model.Participant, error)

	// Count returns the number of registered players.
	Count(ctx context.Context) int
}

// SynergyStore owns the pairwise synergy values.
type SynergyStore interface {
	// Set records the synergy of an unordered pair. Zero removes the record.
	Set(ctx context.Context, a, b, value int) error

	// Get returns the synergy of a pair, 0 when unknown.
	Get(ctx context.Context, a, b int) int

	// Snapshot returns an immutable copy for one generation run.
	Snapshot(ctx context.Context) model.SynergyTable

	// RemoveParticipant drops every pair that involves id.
	RemoveParticipant(ctx context.Context, id int) error

	// Count returns the number of stored pairs.
	Count(ctx context.Context) int
}
