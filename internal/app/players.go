package service

import (
	"context"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
)

// SynergyEntry is a synergy record addressed by player names.
type SynergyEntry struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Value int    `json:"value"`
}

// ListPlayers returns the roster ordered by id.
func (s *Service) ListPlayers(ctx context.Context) ([]model.Participant, error) {
	roster, _, err := s.stores()
	if err != nil {
		return nil, err
	}
	return roster.List(ctx)
}

// AddPlayer registers a player. A nil rating uses the start rating.
func (s *Service) AddPlayer(ctx context.Context, name string, rating *int) (model.Participant, error) {
	roster, _, err := s.stores()
	if err != nil {
		return model.Participant{}, err
	}
	r := s.startRating
	if rating != nil {
		r = *rating
	}
	p, err := roster.Add(ctx, name, r)
	if err != nil {
		return model.Participant{}, err
	}
	s.logger.Info(ctx, "player added", logger.String("name", p.Name), logger.Int("rating", p.Rating))
	return p, nil
}

// UpdatePlayer sets a player's rating.
func (s *Service) UpdatePlayer(ctx context.Context, name string, rating int) (model.Participant, error) {
	roster, _, err := s.stores()
	if err != nil {
		return model.Participant{}, err
	}
	p, err := roster.UpdateRating(ctx, name, rating)
	if err != nil {
		return model.Participant{}, err
	}
	s.logger.Info(ctx, "player updated", logger.String("name", p.Name), logger.Int("rating", p.Rating))
	return p, nil
}

// RemovePlayer deletes a player and every synergy pair it belongs to. The
// roster removal is authoritative: pairs left behind when the synergy store
// fails are only logged, since ids are never reused and such pairs match no
// player.
func (s *Service) RemovePlayer(ctx context.Context, name string) (model.Participant, error) {
	roster, synergy, err := s.stores()
	if err != nil {
		return model.Participant{}, err
	}
	p, err := roster.Remove(ctx, name)
	if err != nil {
		return model.Participant{}, err
	}
	if err := synergy.RemoveParticipant(ctx, p.ID); err != nil {
		s.logger.Warn(ctx, "failed to drop synergy of removed player",
			logger.String("name", p.Name),
			logger.Int("id", p.ID),
			logger.Error(err),
		)
	}
	s.logger.Info(ctx, "player removed", logger.String("name", p.Name))
	return p, nil
}

// SetSynergy records the synergy between two players. Zero clears it.
func (s *Service) SetSynergy(ctx context.Context, a, b string, value int) (SynergyEntry, error) {
	roster, synergy, err := s.stores()
	if err != nil {
		return SynergyEntry{}, err
	}
	pa, err := roster.Get(ctx, a)
	if err != nil {
		return SynergyEntry{}, err
	}
	pb, err := roster.Get(ctx, b)
	if err != nil {
		return SynergyEntry{}, err
	}
	if err := synergy.Set(ctx, pa.ID, pb.ID, value); err != nil {
		return SynergyEntry{}, err
	}
	s.logger.Info(ctx, "synergy set",
		logger.String("a", pa.Name),
		logger.String("b", pb.Name),
		logger.Int("value", value),
	)
	return SynergyEntry{A: pa.Name, B: pb.Name, Value: value}, nil
}

// ListSynergy returns every stored pair between current players, ordered by
// player id.
func (s *Service) ListSynergy(ctx context.Context) ([]SynergyEntry, error) {
	roster, synergy, err := s.stores()
	if err != nil {
		return nil, err
	}
	players, err := roster.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	records := synergy.Snapshot(ctx).Records()
	out := make([]SynergyEntry, 0, len(records))
	for _, rec := range records {
		a, okA := names[rec.A]
		b, okB := names[rec.B]
		if !okA || !okB {
			continue
		}
		out = append(out, SynergyEntry{A: a, B: b, Value: rec.Value})
	}
	return out, nil
}
