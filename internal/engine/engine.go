// Package engine composes planning, enumeration, scoring and ranking into a
// single generation run, and exposes the diversity metric to callers.
//
// A run is pure computation over a roster snapshot and a synergy snapshot.
// With one worker it runs on the calling goroutine; with more, each
// enumeration branch (one choice of the first team) is a unit of work and
// the merged output is identical to the sequential output.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/lineup/internal/domain/diversity"
	"github.com/okian/lineup/internal/domain/enumerate"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/planner"
	"github.com/okian/lineup/internal/domain/ranking"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultMinSize          = 3
	defaultMaxSize          = 13
	defaultMaxPartitions    = 5_000_000
	defaultWorkerMultiplier = 4 // worker cap per GOMAXPROCS
	cancelCheckInterval     = 1024
	maxPrealloc             = 1 << 16
)

// Result is the outcome of one generation run.
type Result struct {
	// Plans lists the team-size plans that were enumerated, in order.
	Plans []planner.Plan
	// Lineups holds the ranked partitions, best first.
	Lineups []model.Partition
	// Enumerated is the number of partitions scored.
	Enumerated uint64
}

// Engine generates ranked lineups. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	minSize       int
	maxSize       int
	mode          enumerate.Mode
	topK          int
	workers       int
	maxPartitions uint64
	metric        *diversity.Metric
	logger        logger.Logger
}

// New creates an engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		minSize:       defaultMinSize,
		maxSize:       defaultMaxSize,
		mode:          enumerate.ByTeam,
		workers:       1,
		maxPartitions: defaultMaxPartitions,
		metric:        diversity.New(),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plans returns the team-size plans for a roster of the given size.
func (e *Engine) Plans(rosterSize int) []planner.Plan {
	return planner.Plans(rosterSize, e.minSize, e.maxSize)
}

// Settings describes the configuration that determines a run's output.
// Worker count and distance solver are left out since they never change it.
func (e *Engine) Settings() string {
	return fmt.Sprintf("sizes=%d..%d mode=%s top_k=%d", e.minSize, e.maxSize, e.mode, e.topK)
}

// Workers returns the number of enumeration workers.
func (e *Engine) Workers() int {
	return e.workers
}

// Estimate returns how many partitions a run over rosterSize participants
// would score, saturating at math.MaxUint64.
func (e *Engine) Estimate(rosterSize int) uint64 {
	total, _ := e.counts(e.Plans(rosterSize), rosterSize)
	return total
}

func (e *Engine) counts(plans []planner.Plan, n int) (uint64, []uint64) {
	counts := make([]uint64, len(plans))
	var total uint64
	for i, p := range plans {
		counts[i] = enumerate.Count(n, p.Flatten(), e.mode)
		if total > math.MaxUint64-counts[i] {
			total = math.MaxUint64
		} else {
			total += counts[i]
		}
	}
	return total, counts
}

// planRun carries the per-plan state shared by sequential and parallel runs.
type planRun struct {
	plan      planner.Plan
	indices   []int
	sizes     []int
	offset    uint64 // sequence number of the plan's first partition
	count     uint64
	perBranch uint64
}

// Generate enumerates every plan for the roster, scores each partition
// against synergy and returns the ranking. A roster with no valid plan gives
// an empty result, not an error.
func (e *Engine) Generate(ctx context.Context, roster []model.Participant, synergy model.SynergySource) (Result, error) {
	start := time.Now()
	plans := e.Plans(len(roster))
	res := Result{Plans: plans}
	if len(plans) == 0 {
		e.logger.Info(ctx, "no valid team split for roster",
			logger.Int("players", len(roster)),
			logger.Int("minSize", e.minSize),
			logger.Int("maxSize", e.maxSize),
		)
		return res, nil
	}

	total, counts := e.counts(plans, len(roster))
	if e.maxPartitions > 0 && total > e.maxPartitions {
		metrics.RecordErrorByComponent("engine", "too_many_partitions")
		return Result{}, fmt.Errorf("%w: %d players give %d partitions, limit is %d",
			ErrTooManyPartitions, len(roster), total, e.maxPartitions)
	}

	indices := make([]int, len(roster))
	for i := range indices {
		indices[i] = i
	}
	scorer := scoring.New(scoring.WithSynergy(synergy))

	var top *ranking.TopK
	var all []model.Partition
	if e.topK > 0 {
		top = ranking.NewTopK(e.topK)
	} else {
		all = make([]model.Partition, 0, min(total, maxPrealloc))
	}

	var offset uint64
	for i, p := range plans {
		run := planRun{
			plan:    p,
			indices: indices,
			sizes:   p.Flatten(),
			offset:  offset,
			count:   counts[i],
		}
		e.logger.Debug(ctx, "enumerating plan",
			logger.String("plan", p.String()),
			logger.Any("partitions", counts[i]),
			logger.String("mode", e.mode.String()),
		)
		var err error
		if e.workers > 1 {
			err = e.runParallel(ctx, roster, scorer, run, top, &all)
		} else {
			b := newBuilder(roster, scorer, len(run.sizes))
			_, err = e.consume(ctx, b, func(yield func(enumerate.Assignment) bool) error {
				return enumerate.Walk(run.indices, run.sizes, e.mode, yield)
			}, run.offset, top, &all)
		}
		if err != nil {
			metrics.RecordErrorByComponent("engine", "generate")
			return Result{}, err
		}
		offset += counts[i]
	}

	if top != nil {
		res.Lineups = top.Items()
	} else {
		ranking.Rank(all)
		res.Lineups = all
	}
	res.Enumerated = total

	elapsed := time.Since(start)
	metrics.RecordGeneration()
	metrics.AddPartitionsEnumerated(total)
	metrics.UpdateLineupsReturned(len(res.Lineups))
	metrics.RecordGenerationLatency(float64(elapsed.Milliseconds()))
	metrics.UpdatePlansPerRun(len(plans))
	e.logger.Info(ctx, "generated lineups",
		logger.Int("players", len(roster)),
		logger.Int("plans", len(plans)),
		logger.Any("enumerated", total),
		logger.Int("kept", len(res.Lineups)),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

// Compare returns the diversity distance between two lineups.
func (e *Engine) Compare(reference, candidate model.Partition) int {
	d, alg := e.metric.DistanceSets(reference.MemberIDs(), candidate.MemberIDs())
	metrics.RecordDistance(string(alg))
	return d
}

// Distances returns the distance of every lineup to the first one.
func (e *Engine) Distances(lineups []model.Partition) []int {
	out := make([]int, len(lineups))
	if len(lineups) == 0 {
		return out
	}
	ref := lineups[0].MemberIDs()
	for i := 1; i < len(lineups); i++ {
		d, alg := e.metric.DistanceSets(ref, lineups[i].MemberIDs())
		metrics.RecordDistance(string(alg))
		out[i] = d
	}
	return out
}

// consume scores every assignment produced by walk, numbering them from
// base, and keeps them in top (when set) or appends them to out.
func (e *Engine) consume(
	ctx context.Context,
	b *builder,
	walk func(yield func(enumerate.Assignment) bool) error,
	base uint64,
	top *ranking.TopK,
	out *[]model.Partition,
) (uint64, error) {
	var n uint64
	var ctxErr error
	err := walk(func(a enumerate.Assignment) bool {
		if n%cancelCheckInterval == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		res := b.score(a)
		seq := base + n
		n++
		if top != nil {
			if top.Admits(res.Fitness, seq) {
				top.Offer(seq, b.partition(res))
			}
			return true
		}
		*out = append(*out, b.partition(res))
		return true
	})
	if err != nil {
		return n, err
	}
	if ctxErr != nil {
		return n, fmt.Errorf("generation cancelled: %w", ctxErr)
	}
	return n, nil
}

// builder turns index assignments into scored partitions, reusing a scratch
// buffer so rejected candidates cost no allocation.
type builder struct {
	roster  []model.Participant
	scorer  *scoring.Scorer
	scratch [][]model.Participant
}

func newBuilder(roster []model.Participant, scorer *scoring.Scorer, teams int) *builder {
	return &builder{
		roster:  roster,
		scorer:  scorer,
		scratch: make([][]model.Participant, teams),
	}
}

func (b *builder) score(a enumerate.Assignment) scoring.Result {
	for i, team := range a {
		members := b.scratch[i][:0]
		for _, idx := range team {
			members = append(members, b.roster[idx])
		}
		b.scratch[i] = members
	}
	return b.scorer.Score(b.scratch)
}

// partition copies the scratch teams of the last scored assignment.
func (b *builder) partition(res scoring.Result) model.Partition {
	teams := make([]model.Team, len(b.scratch))
	for i, members := range b.scratch {
		teams[i] = model.Team{
			Number:  i + 1,
			Members: append([]model.Participant(nil), members...),
			Rating:  res.Ratings[i],
		}
	}
	return model.Partition{Teams: teams, Fitness: res.Fitness}
}
