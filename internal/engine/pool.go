package engine

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/lineup/internal/domain/enumerate"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/domain/ranking"
	"github.com/okian/lineup/internal/domain/scoring"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

// branchJob is one enumeration branch: a fixed first team.
type branchJob struct {
	index int
	first []int
}

// branchWorker scores whole branches. It owns its scratch buffer and, in
// top-K mode, a private selection that the pool merges when all branches
// are done.
type branchWorker struct {
	name      string
	builder   *builder
	top       *ranking.TopK
	processed uint64
	logger    logger.Logger
}

func newBranchWorker(name string, b *builder, topK int, l logger.Logger) *branchWorker {
	w := &branchWorker{
		name:    name,
		builder: b,
		logger:  l.Named(name),
	}
	if topK > 0 {
		w.top = ranking.NewTopK(topK)
	}
	return w
}

// run drains jobs until the channel is closed or a branch fails.
func (w *branchWorker) run(ctx context.Context, e *Engine, r planRun, jobs <-chan branchJob, outs [][]model.Partition) error {
	for job := range jobs {
		start := time.Now()
		base := r.offset + uint64(job.index)*r.perBranch
		var out *[]model.Partition
		if w.top == nil {
			out = &outs[job.index]
		}
		n, err := e.consume(ctx, w.builder, func(yield func(enumerate.Assignment) bool) error {
			return enumerate.WalkBranch(r.indices, r.sizes, e.mode, job.first, yield)
		}, base, w.top, out)
		w.processed += n
		metrics.RecordBranchProcessed()
		metrics.RecordBranchLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordErrorByComponent("worker", "branch_error")
			w.logger.Warn(ctx, "branch stopped",
				logger.Int("branch", job.index),
				logger.Error(err),
			)
			return err
		}
	}
	return nil
}

// runParallel splits one plan into branches and spreads them over the
// engine's workers. Outputs are merged so that the result matches the
// sequential walk exactly.
func (e *Engine) runParallel(
	ctx context.Context,
	roster []model.Participant,
	scorer *scoring.Scorer,
	r planRun,
	top *ranking.TopK,
	all *[]model.Partition,
) error {
	branches, err := enumerate.Branches(r.indices, r.sizes, e.mode)
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		return nil
	}
	// Every branch spans an equally sized subtree.
	r.perBranch = r.count / uint64(len(branches))

	jobs := make(chan branchJob, len(branches))
	for i, first := range branches {
		jobs <- branchJob{index: i, first: first}
	}
	close(jobs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := min(e.workers, len(branches), runtime.GOMAXPROCS(0)*defaultWorkerMultiplier)
	workers := make([]*branchWorker, count)
	var outs [][]model.Partition
	if top == nil {
		outs = make([][]model.Partition, len(branches))
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	metrics.UpdateWorkerActiveCount(count)
	for i := range workers {
		w := newBranchWorker("worker-"+strconv.Itoa(i), newBuilder(roster, scorer, len(r.sizes)), e.topK, e.logger)
		workers[i] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.run(ctx, e, r, jobs, outs); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}()
	}
	wg.Wait()
	metrics.UpdateWorkerActiveCount(0)
	if firstErr != nil {
		return firstErr
	}

	for _, w := range workers {
		e.logger.Debug(ctx, "worker finished",
			logger.String("worker", w.name),
			logger.Any("processed", w.processed),
		)
		if top != nil {
			top.Merge(w.top)
		}
	}
	for _, out := range outs {
		*all = append(*all, out...)
	}
	return nil
}
