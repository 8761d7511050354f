package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

const (
	rosterStore   = "roster"
	maxNameLength = 64
)

// Roster is the RosterStore implementation: an in-memory map by name,
// optionally persisted to a CSV file of "id,name,rating" rows.
type Roster struct {
	mu      sync.RWMutex
	byName  map[string]model.Participant
	nextID  int
	cfg     settings
	watcher *fileWatcher
}

var _ RosterStore = (*Roster)(nil)

// NewRoster creates a roster, loading its file when one is configured.
func NewRoster(ctx context.Context, opts ...Option) (*Roster, error) {
	r := &Roster{
		byName: make(map[string]model.Participant),
		nextID: 1,
		cfg:    newSettings(opts),
	}
	if r.cfg.path == "" {
		return r, nil
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	if r.cfg.watch {
		w, err := watchFile(ctx, r.cfg.path, r.cfg.logger, r.reload)
		if err != nil {
			return nil, err
		}
		r.watcher = w
	}
	r.cfg.logger.Info(ctx, "roster loaded",
		logger.String("path", r.cfg.path),
		logger.Int("players", r.Count(ctx)),
		logger.Bool("watch", r.cfg.watch),
	)
	return r, nil
}

// reload replaces the in-memory state with the file contents.
func (r *Roster) reload() error {
	records, err := readCSV(r.cfg.path)
	if err != nil {
		metrics.RecordStoreError(rosterStore, "load")
		return err
	}
	players, err := decodeRoster(records)
	if err != nil {
		metrics.RecordStoreError(rosterStore, "load")
		return fmt.Errorf("roster %s: %w", r.cfg.path, err)
	}
	byName := make(map[string]model.Participant, len(players))
	nextID := 1
	for _, p := range players {
		if _, dup := byName[p.Name]; dup {
			metrics.RecordStoreError(rosterStore, "load")
			return fmt.Errorf("roster %s: %w: %q", r.cfg.path, ErrDuplicate, p.Name)
		}
		byName[p.Name] = p
		nextID = max(nextID, p.ID+1)
	}

	r.mu.Lock()
	r.byName = byName
	r.nextID = nextID
	r.mu.Unlock()

	metrics.RecordStoreOperation(rosterStore, "load")
	metrics.UpdateRosterSize(len(byName))
	return nil
}

// Close stops watching the roster file.
func (r *Roster) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

// List returns every player ordered by id.
func (r *Roster) List(_ context.Context) ([]model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(), nil
}

func (r *Roster) sortedLocked() []model.Participant {
	out := make([]model.Participant, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.Participant) int { return a.ID - b.ID })
	return out
}

// Get returns the player with the given name.
func (r *Roster) Get(_ context.Context, name string) (model.Participant, error) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	p, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return model.Participant{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Add registers a new player with the next free id.
func (r *Roster) Add(ctx context.Context, name string, rating int) (model.Participant, error) {
	name, err := validateName(name)
	if err != nil {
		return model.Participant{}, err
	}
	var p model.Participant
	err = r.mutate(ctx, "add", func() (func(), error) {
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
		}
		p = model.Participant{ID: r.nextID, Name: name, Rating: rating}
		r.byName[name] = p
		r.nextID++
		return func() {
			delete(r.byName, name)
			r.nextID--
		}, nil
	})
	return p, err
}

// UpdateRating sets the rating of an existing player.
func (r *Roster) UpdateRating(ctx context.Context, name string, rating int) (model.Participant, error) {
	name = strings.TrimSpace(name)
	var p model.Participant
	err := r.mutate(ctx, "update", func() (func(), error) {
		old, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		p = old
		p.Rating = rating
		r.byName[name] = p
		return func() { r.byName[name] = old }, nil
	})
	return p, err
}

// Remove deletes a player. Ids are never reused.
func (r *Roster) Remove(ctx context.Context, name string) (model.Participant, error) {
	name = strings.TrimSpace(name)
	var p model.Participant
	err := r.mutate(ctx, "remove", func() (func(), error) {
		old, ok := r.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		p = old
		delete(r.byName, name)
		return func() { r.byName[name] = old }, nil
	})
	return p, err
}

// Count returns the number of registered players.
func (r *Roster) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// mutate applies change under the write lock and persists the result. If
// persisting fails the returned undo restores the previous state.
func (r *Roster) mutate(ctx context.Context, op string, change func() (undo func(), err error)) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(rosterStore, op, float64(time.Since(start).Milliseconds()))
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	undo, err := change()
	if err != nil {
		metrics.RecordStoreError(rosterStore, op)
		return err
	}
	if r.cfg.path != "" {
		if err := writeCSV(r.cfg.path, encodeRoster(r.sortedLocked())); err != nil {
			undo()
			metrics.RecordStoreError(rosterStore, op)
			r.cfg.logger.Error(ctx, "persisting roster failed", logger.String("op", op), logger.Error(err))
			return fmt.Errorf("persist roster: %w", err)
		}
	}
	metrics.RecordStoreOperation(rosterStore, op)
	metrics.UpdateRosterSize(len(r.byName))
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > maxNameLength:
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, maxNameLength)
	case strings.ContainsAny(name, "\r\n"):
		return "", fmt.Errorf("%w: contains a line break", ErrInvalidName)
	}
	return name, nil
}
