package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

const synergyStore = "synergy"

// Synergy is the SynergyStore implementation, optionally persisted to a CSV
// file of "lo,hi,value" rows.
type Synergy struct {
	mu      sync.RWMutex
	table   model.SynergyTable
	cfg     settings
	watcher *fileWatcher
}

var _ SynergyStore = (*Synergy)(nil)

// NewSynergy creates a synergy store, loading its file when one is configured.
func NewSynergy(ctx context.Context, opts ...Option) (*Synergy, error) {
	s := &Synergy{
		table: make(model.SynergyTable),
		cfg:   newSettings(opts),
	}
	if s.cfg.path == "" {
		return s, nil
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	if s.cfg.watch {
		w, err := watchFile(ctx, s.cfg.path, s.cfg.logger, s.reload)
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}
	s.cfg.logger.Info(ctx, "synergy loaded",
		logger.String("path", s.cfg.path),
		logger.Int("pairs", s.Count(ctx)),
	)
	return s, nil
}

func (s *Synergy) reload() error {
	records, err := readCSV(s.cfg.path)
	if err != nil {
		metrics.RecordStoreError(synergyStore, "load")
		return err
	}
	table, err := decodeSynergy(records)
	if err != nil {
		metrics.RecordStoreError(synergyStore, "load")
		return fmt.Errorf("synergy %s: %w", s.cfg.path, err)
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	metrics.RecordStoreOperation(synergyStore, "load")
	metrics.UpdateSynergyPairs(len(table))
	return nil
}

// Close stops watching the synergy file.
func (s *Synergy) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Set records the synergy of the pair (a, b). Zero removes the pair.
func (s *Synergy) Set(ctx context.Context, a, b, value int) error {
	if a == b {
		metrics.RecordStoreError(synergyStore, "set")
		return fmt.Errorf("%w: %d", ErrInvalidPair, a)
	}
	key := model.NewPairKey(a, b)
	return s.mutate(ctx, "set", func() func() {
		old, had := s.table[key]
		if value == 0 {
			delete(s.table, key)
		} else {
			s.table[key] = value
		}
		return func() {
			if had {
				s.table[key] = old
			} else {
				delete(s.table, key)
			}
		}
	})
}

// Get returns the synergy of the pair, 0 when unknown.
func (s *Synergy) Get(_ context.Context, a, b int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Lookup(a, b)
}

// Snapshot returns an independent copy of the table.
func (s *Synergy) Snapshot(_ context.Context) model.SynergyTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Clone()
}

// RemoveParticipant drops every pair that involves id.
func (s *Synergy) RemoveParticipant(ctx context.Context, id int) error {
	return s.mutate(ctx, "remove", func() func() {
		removed := make(map[model.PairKey]int)
		for k, v := range s.table {
			if k.Lo == id || k.Hi == id {
				removed[k] = v
				delete(s.table, k)
			}
		}
		return func() {
			for k, v := range removed {
				s.table[k] = v
			}
		}
	})
}

// Count returns the number of stored pairs.
func (s *Synergy) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

func (s *Synergy) mutate(ctx context.Context, op string, change func() (undo func())) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(synergyStore, op, float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	undo := change()
	if s.cfg.path != "" {
		if err := writeCSV(s.cfg.path, encodeSynergy(s.table)); err != nil {
			undo()
			metrics.RecordStoreError(synergyStore, op)
			s.cfg.logger.Error(ctx, "persisting synergy failed", logger.String("op", op), logger.Error(err))
			return fmt.Errorf("persist synergy: %w", err)
		}
	}
	metrics.RecordStoreOperation(synergyStore, op)
	metrics.UpdateSynergyPairs(len(s.table))
	return nil
}
