package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"rangequery-bench/person"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Run drives b through one complete benchmark: Setup once, params.Runs
// measurement runs of params.Concurrency workers calling Test, and Teardown
// once. A teardown failure is joined to the returned error and never
// replaces an earlier one.
func Run(ctx context.Context, b Benchmark, params BenchParams, label string) (stats BenchStats, err error) {
	if params.Concurrency < 1 {
		params.Concurrency = 1
	}

	defer func() {
		if terr := b.Teardown(context.WithoutCancel(ctx)); terr != nil {
			zlog.Error().Err(terr).Msg("Teardown failed")
			err = errors.Join(err, fmt.Errorf("teardown: %w", terr))
		}
	}()

	if err := b.Setup(ctx); err != nil {
		return BenchStats{Label: label}, fmt.Errorf("setup: %w", err)
	}

	workers := make([]Worker, 0, params.Concurrency)
	defer func() {
		for _, w := range workers {
			if cerr := w.Close(); cerr != nil {
				zlog.Warn().Err(cerr).Msg("Closing worker")
			}
		}
	}()
	for id := 0; id < params.Concurrency; id++ {
		w, err := b.Worker(ctx, id, NewRand(params.Seed, id))
		if err != nil {
			return BenchStats{Label: label}, fmt.Errorf("worker %d: %w", id, err)
		}
		workers = append(workers, w)
	}
	zlog.Debug().Int("workers", len(workers)).Msg("Workers ready")

	if err := warmup(ctx, workers[0], params.Warmup); err != nil {
		return BenchStats{Label: label}, fmt.Errorf("warmup: %w", err)
	}

	return RunMultiple(params.Runs, label, func(run int) (BenchStats, error) {
		return measure(ctx, workers, params, label)
	})
}

// NewRand returns the random source owned by worker id. A zero seed yields
// an unpredictable source.
func NewRand(seed uint64, id int) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, uint64(id)))
}

func warmup(ctx context.Context, w Worker, n int) error {
	if n <= 0 {
		return nil
	}
	fmt.Printf("  Warming up (%d queries)...\n", n)
	for i := 0; i < n; i++ {
		if _, err := w.Test(ctx); err != nil {
			if errors.Is(err, person.ErrInvalidPerson) || ctx.Err() != nil {
				return err
			}
			zlog.Warn().Err(err).Msg("Warmup probe failed")
		}
	}
	return nil
}

func measure(ctx context.Context, workers []Worker, params BenchParams, label string) (BenchStats, error) {
	perWorker := params.Queries / len(workers)
	if params.Duration > 0 {
		fmt.Printf("  Running for %s (%d concurrent)...\n", params.Duration, len(workers))
	} else {
		fmt.Printf("  Running %d queries (%d concurrent)...\n", perWorker*len(workers), len(workers))
	}

	var stopped atomic.Bool
	if params.Duration > 0 {
		t := time.AfterFunc(params.Duration, func() { stopped.Store(true) })
		defer t.Stop()
	}

	collected := make([][]QueryResult, len(workers))
	g, gctx := errgroup.WithContext(ctx)

	start := time.Now()
	for i, w := range workers {
		g.Go(func() error {
			var local []QueryResult
			if params.Duration <= 0 {
				local = make([]QueryResult, 0, perWorker)
			}
			defer func() { collected[i] = local }()

			for n := 0; ; n++ {
				if gctx.Err() != nil {
					return nil
				}
				if params.Duration > 0 {
					if stopped.Load() {
						return nil
					}
				} else if n >= perWorker {
					return nil
				}

				qStart := time.Now()
				rows, err := w.Test(gctx)
				if err != nil && gctx.Err() != nil {
					return nil
				}
				local = append(local, QueryResult{At: qStart, Duration: time.Since(qStart), Rows: rows, Err: err})
				if errors.Is(err, person.ErrInvalidPerson) {
					return fmt.Errorf("worker %d: %w", i, err)
				}
			}
		})
	}
	err := g.Wait()
	totalDuration := time.Since(start)

	var results []QueryResult
	for _, local := range collected {
		results = append(results, local...)
	}

	errCount := 0
	for _, r := range results {
		if r.Err != nil && errCount < 5 {
			zlog.Warn().Err(r.Err).Msg("Probe failed")
			errCount++
		}
	}

	stats := ComputeStats(label, results, totalDuration)
	if len(workers) > 1 {
		PrintFairness(ComputeFairness(collected, totalDuration))
	}
	if err == nil {
		err = ctx.Err()
	}
	return stats, err
}
