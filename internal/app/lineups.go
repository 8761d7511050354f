package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Run is one stored generation result.
type Run struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	Fingerprint uint64            `json:"-"`
	Plans       []string          `json:"plans"`
	Players     int               `json:"players"`
	Enumerated  uint64            `json:"enumerated"`
	Lineups     []model.Partition `json:"-"`
	Distances   []int             `json:"-"`
}

// RankedLineup is a lineup of a run with its 1-based rank.
type RankedLineup struct {
	Rank     int `json:"rank"`
	Distance int `json:"distance"` // diversity distance to the rank 1 lineup
	model.Partition
}

// RunView is a run page returned to callers.
type RunView struct {
	Run
	Total   int            `json:"total"`
	Cached  bool           `json:"cached"`
	Lineups []RankedLineup `json:"lineups"`
}

// Comparison is the diversity distance between two lineups of a run.
type Comparison struct {
	RunID     string `json:"run_id"`
	Reference int    `json:"reference"`
	Candidate int    `json:"candidate"`
	Distance  int    `json:"distance"`
}

// Generate runs the engine over the current roster and synergy snapshot and
// stores the result. At most limit lineups are returned; limit <= 0 returns
// every stored lineup.
func (s *Service) Generate(ctx context.Context, limit int) (RunView, error) {
	roster, synergy, err := s.stores()
	if err != nil {
		return RunView{}, err
	}

	players, err := roster.List(ctx)
	if err != nil {
		return RunView{}, fmt.Errorf("list players: %w", err)
	}
	table := synergy.Snapshot(ctx)
	fp := s.fingerprint(players, table)

	if s.cacheRuns {
		if id, ok := s.byFingerprint.Load(fp); ok {
			if run, ok := s.runs.Load(id); ok {
				s.logger.Debug(ctx, "serving cached run", logger.String("run", id))
				return view(run, limit, true), nil
			}
		}
	}

	start := time.Now()
	res, err := s.engine.Generate(ctx, players, table)
	if err != nil {
		s.logger.Warn(ctx, "generation failed",
			logger.Int("players", len(players)),
			logger.Error(err),
		)
		return RunView{}, err
	}

	lineups := res.Lineups
	if len(lineups) > s.maxLineups {
		lineups = lineups[:s.maxLineups]
	}
	plans := make([]string, len(res.Plans))
	for i, p := range res.Plans {
		plans[i] = p.String()
	}

	run := &Run{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Fingerprint: fp,
		Plans:       plans,
		Players:     len(players),
		Enumerated:  res.Enumerated,
		Lineups:     lineups,
		Distances:   s.engine.Distances(lineups),
	}
	s.store(run)

	s.logger.Info(ctx, "lineups generated",
		logger.String("run", run.ID),
		logger.Int("players", len(players)),
		logger.Any("plans", plans),
		logger.Int64("enumerated", int64(res.Enumerated)),
		logger.Int("kept", len(lineups)),
		logger.Duration("took", time.Since(start)),
	)

	return view(run, limit, false), nil
}

// Run returns a stored run. At most limit lineups are included.
func (s *Service) Run(_ context.Context, id string, limit int) (RunView, error) {
	run, ok := s.runs.Load(id)
	if !ok {
		return RunView{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return view(run, limit, false), nil
}

// Runs lists stored runs, newest first, without their lineups.
func (s *Service) Runs(_ context.Context) []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if run, ok := s.runs.Load(s.order[i]); ok {
			r := *run
			r.Lineups, r.Distances = nil, nil
			out = append(out, r)
		}
	}
	return out
}

// Compare returns the diversity distance between two lineups of a stored
// run, addressed by 1-based rank.
func (s *Service) Compare(ctx context.Context, runID string, reference, candidate int) (Comparison, error) {
	run, ok := s.runs.Load(runID)
	if !ok {
		return Comparison{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	for _, rank := range []int{reference, candidate} {
		if rank < 1 || rank > len(run.Lineups) {
			return Comparison{}, fmt.Errorf("%w: %d not in 1..%d", ErrRankOutOfRange, rank, len(run.Lineups))
		}
	}

	d := s.engine.Compare(run.Lineups[reference-1], run.Lineups[candidate-1])
	s.logger.Debug(ctx, "lineups compared",
		logger.String("run", runID),
		logger.Int("reference", reference),
		logger.Int("candidate", candidate),
		logger.Int("distance", d),
	)
	return Comparison{RunID: runID, Reference: reference, Candidate: candidate, Distance: d}, nil
}

// store adds a run and evicts the oldest ones beyond the history bound.
func (s *Service) store(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs.Store(run.ID, run)
	s.byFingerprint.Store(run.Fingerprint, run.ID)
	s.order = append(s.order, run.ID)
	s.generations++

	for len(s.order) > s.runHistory {
		oldest := s.order[0]
		s.order = s.order[1:]
		if old, ok := s.runs.LoadAndDelete(oldest); ok {
			if id, ok := s.byFingerprint.Load(old.Fingerprint); ok && id == oldest {
				s.byFingerprint.Delete(old.Fingerprint)
			}
		}
	}
	metrics.UpdateRunHistorySize(s.runs.Size())
}

// fingerprint hashes everything that determines a run's lineups.
func (s *Service) fingerprint(players []model.Participant, table model.SynergyTable) uint64 {
	h := xxh3.New()
	_, _ = h.WriteString(s.engine.Settings())
	var buf [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	for _, p := range players {
		putInt(p.ID)
		putInt(p.Rating)
		_, _ = h.WriteString(p.Name)
	}
	for _, rec := range table.Records() {
		putInt(rec.A)
		putInt(rec.B)
		putInt(rec.Value)
	}
	return h.Sum64()
}

func view(run *Run, limit int, cached bool) RunView {
	n := len(run.Lineups)
	if limit > 0 && limit < n {
		n = limit
	}
	lineups := make([]RankedLineup, n)
	for i := range n {
		lineups[i] = RankedLineup{Rank: i + 1, Distance: run.Distances[i], Partition: run.Lineups[i]}
	}
	return RunView{Run: *run, Total: len(run.Lineups), Cached: cached, Lineups: lineups}
}
