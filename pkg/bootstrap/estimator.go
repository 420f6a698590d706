package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/resample/pkg/safeconv"
)

// Run status values passed to a Recorder.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const (
	spanRun          = "bootstrap.run"
	spanRunTwoSample = "bootstrap.run_two_sample"
)

// Recorder receives one observation per completed run.
type Recorder interface {
	RecordRun(ctx context.Context, kind, status string, replicates int, duration time.Duration)
}

// Estimator runs bootstrap resampling with a configurable random source,
// parallelism and telemetry. The zero configuration draws a fresh seed per run
// and evaluates trials sequentially.
type Estimator struct {
	seed     uint64
	seeded   bool
	source   Source
	workers  int
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSeed fixes the seed. Trial i draws from its own PCG stream keyed by
// (seed, i), so a seeded run is reproducible for any worker count.
func WithSeed(seed uint64) Option {
	return func(e *Estimator) {
		e.seed = seed
		e.seeded = true
	}
}

// WithSource makes the estimator consume src sequentially, in trial order.
// It takes precedence over WithSeed and forces a single worker.
func WithSource(src Source) Option {
	return func(e *Estimator) {
		e.source = src
	}
}

// WithWorkers sets how many goroutines evaluate trials. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.workers = n
	}
}

// WithLogger sets the structured logger. Nil keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer enables one span per run.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Estimator) {
		e.tracer = tracer
	}
}

// WithRecorder enables per-run metrics.
func WithRecorder(rec Recorder) Option {
	return func(e *Estimator) {
		e.recorder = rec
	}
}

// New creates an Estimator.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		workers: 1,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.workers = max(e.workers, 1)

	return e
}

// Run bootstraps stat over sample with the given number of replicates.
// The context is used for tracing and to stop outstanding parallel trials
// once one of them fails; a canceled context aborts the run.
func (e *Estimator) Run(ctx context.Context, sample []float64, stat Statistic, replicates int) (ReplicateSet, error) {
	err := validate(len(sample), replicates, stat != nil)
	if err != nil {
		return ReplicateSet{}, err
	}

	return e.execute(ctx, spanRun, replicates, len(sample), func(runCtx context.Context, seq Source, trialSource func(int) Source) ([]float64, error) {
		return e.collect(runCtx, replicates, len(sample), seq, trialSource,
			func(trial int, src Source, buf []float64) (float64, error) {
				return runTrial(trial, sample, buf, stat, src)
			})
	})
}

// RunTwoSample bootstraps a statistic of two independent samples. Each trial
// resamples a and b separately, each with replacement and at its own size.
func (e *Estimator) RunTwoSample(
	ctx context.Context, a, b []float64, stat TwoSampleStatistic, replicates int,
) (ReplicateSet, error) {
	err := validate(min(len(a), len(b)), replicates, stat != nil)
	if err != nil {
		return ReplicateSet{}, err
	}

	return e.execute(ctx, spanRunTwoSample, replicates, len(a)+len(b), func(runCtx context.Context, seq Source, trialSource func(int) Source) ([]float64, error) {
		return e.collect(runCtx, replicates, len(a)+len(b), seq, trialSource,
			func(trial int, src Source, buf []float64) (float64, error) {
				left, right := buf[:len(a)], buf[len(a):]
				draw(a, left, src)
				draw(b, right, src)

				return evaluate(trial, func() (float64, error) { return stat(left, right) })
			})
	})
}

// trialFunc evaluates one trial using src and scratch buffer buf.
type trialFunc func(trial int, src Source, buf []float64) (float64, error)

// execute wraps a run with source selection, tracing, logging and metrics.
func (e *Estimator) execute(
	ctx context.Context,
	kind string,
	replicates, sampleSize int,
	body func(ctx context.Context, seq Source, trialSource func(int) Source) ([]float64, error),
) (ReplicateSet, error) {
	start := time.Now()

	seed, seeded := e.seed, e.seeded
	if e.source == nil && !seeded {
		seed, seeded = rand.Uint64(), true
	}

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, kind, trace.WithAttributes(
			attribute.Int("bootstrap.replicates", replicates),
			attribute.Int("bootstrap.sample_size", sampleSize),
			attribute.Int("bootstrap.workers", e.workers),
		))
		defer span.End()
	}

	var (
		values []float64
		err    error
	)

	if e.source != nil {
		if e.workers > 1 {
			e.logger.DebugContext(ctx, "injected source forces sequential trials", "workers", e.workers)
		}

		values, err = body(ctx, e.source, nil)
		seeded = false
	} else {
		values, err = body(ctx, nil, func(trial int) Source {
			return rand.New(rand.NewPCG(seed, safeconv.MustIntToUint64(trial)))
		})
	}

	status := StatusOK
	if err != nil {
		status = StatusError

		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	if e.recorder != nil {
		e.recorder.RecordRun(ctx, kind, status, replicates, time.Since(start))
	}

	if err != nil {
		e.logger.DebugContext(ctx, "bootstrap run failed", "kind", kind, "error", err)

		return ReplicateSet{}, err
	}

	e.logger.DebugContext(ctx, "bootstrap run complete",
		"kind", kind,
		"replicates", replicates,
		"sample_size", sampleSize,
		"workers", e.workers,
		"duration", time.Since(start),
	)

	return ReplicateSet{values: values, seed: seed, seeded: seeded}, nil
}

// collect evaluates all trials. With a sequential source seq it runs in trial
// order on the calling goroutine; otherwise trials are split into contiguous
// chunks across workers, each trial drawing from trialSource(trial).
func (e *Estimator) collect(
	ctx context.Context,
	replicates, bufLen int,
	seq Source,
	trialSource func(int) Source,
	fn trialFunc,
) ([]float64, error) {
	values := make([]float64, replicates)

	if seq != nil || e.workers == 1 {
		buf := make([]float64, bufLen)

		for trial := range replicates {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("bootstrap canceled: %w", err)
			}

			src := seq
			if src == nil {
				src = trialSource(trial)
			}

			value, err := fn(trial, src, buf)
			if err != nil {
				return nil, err
			}

			values[trial] = value
		}

		return values, nil
	}

	workers := min(e.workers, replicates)
	chunkSize := (replicates + workers - 1) / workers

	// lowest is the smallest failing trial seen so far. Trials past it are
	// skipped, trials before it always run, so the reported failure is the
	// same one a sequential run reports.
	var lowest atomic.Int64

	lowest.Store(int64(replicates))

	failures := make([]error, workers)

	group, groupCtx := errgroup.WithContext(ctx)

	for w := range workers {
		lo := w * chunkSize
		hi := min(lo+chunkSize, replicates)

		if lo >= hi {
			continue
		}

		group.Go(func() error {
			buf := make([]float64, bufLen)

			for trial := lo; trial < hi && int64(trial) < lowest.Load(); trial++ {
				if err := groupCtx.Err(); err != nil {
					return fmt.Errorf("bootstrap canceled: %w", err)
				}

				value, err := fn(trial, trialSource(trial), buf)
				if err != nil {
					failures[w] = err
					storeMin(&lowest, int64(trial))

					return nil
				}

				values[trial] = value
			}

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}

	if first := lowest.Load(); first < int64(replicates) {
		return nil, failures[int(first)/chunkSize]
	}

	return values, nil
}

func storeMin(v *atomic.Int64, candidate int64) {
	for {
		current := v.Load()
		if candidate >= current || v.CompareAndSwap(current, candidate) {
			return
		}
	}
}
