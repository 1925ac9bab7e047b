// Package bench applies a random, weighted mix of operations to a Sequence,
// times each one, and optionally checks every step against a slice model.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/pliu/splayseq/pkg/config"
	"github.com/pliu/splayseq/pkg/metrics"
	"github.com/pliu/splayseq/pkg/sequence"
	"github.com/pliu/splayseq/pkg/utils"
)

var (
	ErrVerification     = errors.New("sequence diverged from model")
	ErrUnknownOperation = errors.New("unknown operation")
)

// bucketSize makes sort keys collide often enough to exercise stability.
const bucketSize = 1000

func byBucket(a, b int) int {
	return a%bucketSize - b%bucketSize
}

type weightedOp struct {
	name   string
	weight int
	apply  func(r *Runner) error
}

type Runner struct {
	cfg   *config.BenchConfig
	clock clock.Clock
	rng   *rand.Rand

	seq *sequence.Sequence[int]
	aux *sequence.Sequence[int]

	// model mirrors seq when verification is enabled.
	model  []int
	sorted bool
	next   int

	ops         []weightedOp
	totalWeight int
	latency     map[string]*utils.LatencyTracker
	counts      map[string]int
}

func NewRunner(cfg *config.BenchConfig) (*Runner, error) {
	return NewRunnerWithClock(cfg, clock.New())
}

func NewRunnerWithClock(cfg *config.BenchConfig, clk clock.Clock) (*Runner, error) {
	r := &Runner{
		cfg:     cfg,
		clock:   clk,
		rng:     rand.New(rand.NewSource(cfg.GetSeed())),
		seq:     sequence.New[int](nil),
		aux:     sequence.New[int](nil),
		latency: make(map[string]*utils.LatencyTracker),
		counts:  make(map[string]int),
	}

	weights := cfg.GetWeights()
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	// Map order is random; sort so a seed always picks the same operations.
	slices.Sort(names)
	for _, name := range names {
		apply, ok := operations[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
		}
		if weights[name] <= 0 {
			continue
		}
		r.ops = append(r.ops, weightedOp{name: name, weight: weights[name], apply: apply})
		r.totalWeight += weights[name]
		r.latency[name] = utils.NewLatencyTrackerWithClock(cfg.GetStatsWindow(), clk)
	}
	if r.totalWeight == 0 {
		return nil, fmt.Errorf("%w: no operation has a positive weight", ErrUnknownOperation)
	}
	return r, nil
}

func (r *Runner) verifying() bool {
	return r.cfg.Verify
}

func (r *Runner) fresh() int {
	r.next++
	return r.next
}

func (r *Runner) pick() weightedOp {
	n := r.rng.Intn(r.totalWeight)
	for _, op := range r.ops {
		if n < op.weight {
			return op
		}
		n -= op.weight
	}
	return r.ops[len(r.ops)-1]
}

// timed runs fn and records how long it took under name.
func (r *Runner) timed(name string, fn func()) {
	start := r.clock.Now()
	fn()
	elapsed := r.clock.Since(start)
	tracker, ok := r.latency[name]
	if !ok {
		tracker = utils.NewLatencyTrackerWithClock(r.cfg.GetStatsWindow(), r.clock)
		r.latency[name] = tracker
	}
	tracker.Observe(elapsed)
	r.counts[name]++
	metrics.OperationCount.WithLabelValues(name).Inc()
}

// Run fills the sequence to the configured initial size and then applies the
// configured number of operations. It stops early when ctx is done. A Runner
// runs once.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer r.aux.Free()

	runID := uuid.NewString()
	log.Info().Str("run_id", runID).Int64("seed", r.cfg.GetSeed()).Int("operations", r.cfg.GetOperations()).Msg("Starting bench run")

	start := r.clock.Now()
	for range r.cfg.GetInitialSize() {
		v := r.fresh()
		r.seq.Append(v)
		if r.verifying() {
			r.model = append(r.model, v)
		}
	}

	total := r.cfg.GetOperations()
	done := 0
	for ; done < total; done++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bench run %s interrupted after %d operations: %w", runID, done, err)
		}

		op := r.pick()
		if err := op.apply(r); err != nil {
			metrics.VerificationFailureCount.Inc()
			return nil, fmt.Errorf("operation %d (%s): %w", done, op.name, err)
		}
		if r.verifying() {
			full := (done+1)%r.cfg.GetCheckEvery() == 0 || done+1 == total
			if err := r.verify(full); err != nil {
				metrics.VerificationFailureCount.Inc()
				return nil, fmt.Errorf("operation %d (%s): %w", done, op.name, err)
			}
		}
	}

	report := r.report(runID, r.clock.Since(start), done)
	r.publishQuantiles()
	metrics.SequenceLength.Set(float64(report.FinalLength))
	metrics.TreeHeight.Set(float64(report.TreeHeight))
	log.Info().Str("run_id", runID).Int("length", report.FinalLength).Int("height", report.TreeHeight).Msg("Bench run finished")
	return report, nil
}

// verify compares the sequence with the model. A full check also compares
// every element and walks the tree.
func (r *Runner) verify(full bool) error {
	if got, want := r.seq.Len(), len(r.model); got != want {
		return fmt.Errorf("%w: length %d, model has %d", ErrVerification, got, want)
	}
	if !full {
		return nil
	}
	if got := r.seq.Values(); !slices.Equal(got, r.model) {
		return fmt.Errorf("%w: elements differ from model", ErrVerification)
	}
	if err := r.seq.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}
	return nil
}

// Sequence returns the benchmarked sequence.
func (r *Runner) Sequence() *sequence.Sequence[int] {
	return r.seq
}

func (r *Runner) publishQuantiles() {
	for name, tracker := range r.latency {
		for _, p := range []float64{50, 99} {
			val, ok := tracker.Percentile(p)
			if !ok {
				continue
			}
			metrics.OperationLatencyQuantile.WithLabelValues(name, fmt.Sprintf("p%d", int(p))).Set(float64(val.Nanoseconds()))
		}
	}
}

func (r *Runner) report(runID string, elapsed time.Duration, done int) *Report {
	report := &Report{
		RunID:       runID,
		Seed:        r.cfg.GetSeed(),
		Operations:  done,
		Elapsed:     elapsed,
		FinalLength: r.seq.Len(),
		TreeHeight:  r.seq.Height(),
		Verified:    r.verifying(),
	}
	names := make([]string, 0, len(r.counts))
	for name := range r.counts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		tracker := r.latency[name]
		op := OpReport{Name: name, Count: r.counts[name]}
		if avg, ok := tracker.Mean(); ok {
			op.AvgNs = avg.Nanoseconds()
		}
		if p50, ok := tracker.Percentile(50); ok {
			op.P50Ns = p50.Nanoseconds()
		}
		if p99, ok := tracker.Percentile(99); ok {
			op.P99Ns = p99.Nanoseconds()
		}
		report.Ops = append(report.Ops, op)
	}
	return report
}
