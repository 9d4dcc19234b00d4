package worker

import (
	"context"
	"fmt"
	"math"

	zlog "github.com/rs/zerolog/log"

	"insertbench/benchmark"
	"insertbench/corpus"
	dbutils "insertbench/dbUtils"
	"insertbench/util"
)

// How many repetitions a worker runs
type Policy struct {
	Reps       int     // measured repetitions; 0 derives them from Time
	WarmupReps int     // unmeasured repetitions run first
	Time       float64 // target measurement time in seconds, when Reps is 0
	MinReps    int
	MaxReps    int
}

// Measures one strategy with one batch size
type Worker struct {
	run       string
	conn      dbutils.Conn
	strategy  benchmark.Strategy
	batchSize int
	corpus    corpus.Corpus
	clock     util.Clock
	policy    Policy
}

type Result struct {
	Strategy  string
	BatchSize int
	Length    int       // records written per repetition
	Rts       []float64 // seconds taken by each measured repetition
	TotalRt   float64   // sum of Rts
}

// A failed repetition
type RepError struct {
	Strategy  string
	BatchSize int
	Rep       int
	Warmup    bool
	Err       error
}

func (e *RepError) Error() string {
	phase := "rep"
	if e.Warmup {
		phase = "warmup rep"
	}
	return fmt.Sprintf("%s (batch size %d) %s %d: %v", e.Strategy, e.BatchSize, phase, e.Rep, e.Err)
}

func (e *RepError) Unwrap() error {
	return e.Err
}

func NewWorker(run string, conn dbutils.Conn, strategy benchmark.Strategy, batchSize int, c corpus.Corpus,
	clock util.Clock, policy Policy) *Worker {
	return &Worker{
		run:       run,
		conn:      conn,
		strategy:  strategy,
		batchSize: batchSize,
		corpus:    c,
		clock:     clock,
		policy:    policy,
	}
}

func (w *Worker) log(msg string) {
	zlog.Info().Str("run", w.run).Str("strategy", w.strategy.Name()).Int("batchSize", w.batchSize).Msg(msg)
}

// Runs and times one repetition
func (w *Worker) rep(ctx context.Context, i int, warmup bool) (float64, error) {
	start := w.clock.Now()
	err := benchmark.RunRep(ctx, w.conn, w.strategy, w.corpus, w.batchSize)
	rt := w.clock.Now() - start

	if err != nil {
		return rt, &RepError{Strategy: w.strategy.Name(), BatchSize: w.batchSize, Rep: i, Warmup: warmup, Err: err}
	}
	zlog.Debug().Str("run", w.run).Str("strategy", w.strategy.Name()).Int("batchSize", w.batchSize).
		Int("rep", i).Bool("warmup", warmup).Float64("rt", rt).Msg("completed")
	return rt, nil
}

// Number of measured repetitions that fill the target time, given warm-up timings
func (w *Worker) measuredReps(warmupRts []float64) int {
	if w.policy.Reps > 0 {
		return w.policy.Reps
	}

	var total float64
	for _, rt := range warmupRts {
		total += rt
	}
	mean := total / float64(len(warmupRts))

	reps := w.policy.MaxReps
	if mean > 0 {
		reps = int(math.Ceil(w.policy.Time / mean))
	}
	return max(w.policy.MinReps, min(reps, w.policy.MaxReps))
}

func (w *Worker) Run(ctx context.Context) (*Result, error) {
	w.log("Warming up")
	warmup := w.policy.WarmupReps
	// automatic repetitions need at least one timing to extrapolate from
	if w.policy.Reps <= 0 && warmup == 0 {
		warmup = 1
	}
	warmupRts := []float64{}
	for i := 0; i < warmup; i++ {
		rt, err := w.rep(ctx, i, true)
		if err != nil {
			return nil, err
		}
		warmupRts = append(warmupRts, rt)
	}

	reps := w.measuredReps(warmupRts)
	w.log(fmt.Sprintf("Running %d reps", reps))

	result := &Result{
		Strategy:  w.strategy.Name(),
		BatchSize: w.batchSize,
		Length:    len(w.corpus),
		Rts:       make([]float64, 0, reps),
	}
	for i := 0; i < reps; i++ {
		rt, err := w.rep(ctx, i, false)
		if err != nil {
			return nil, err
		}
		result.Rts = append(result.Rts, rt)
		result.TotalRt += rt
	}

	w.log("Done")
	return result, nil
}
