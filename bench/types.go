package bench

import (
	"context"
	"math/rand/v2"
	"time"
)

type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Path     string // sqlite file
}

type BenchParams struct {
	Range              int  // synthetic rows populated by Setup
	CreateTempDatabase bool // database is disposable, Teardown skips row cleanup
	Queries            int
	Concurrency        int
	Warmup             int
	Duration           time.Duration // 0 = use Queries count, >0 = time-based
	Runs               int           // number of runs for median (0 = single run)
	Seed               uint64        // 0 = random worker seeds
}

type QueryResult struct {
	At       time.Time
	Duration time.Duration
	Rows     int
	Err      error
}

type BenchStats struct {
	Label      string
	Total      int
	Errors     int
	Rows       int
	Duration   time.Duration
	QPS        float64
	LatencyAvg time.Duration
	LatencyMin time.Duration
	LatencyMax time.Duration
	LatencyP50 time.Duration
	LatencyP75 time.Duration
	LatencyP90 time.Duration
	LatencyP95 time.Duration
	LatencyP99 time.Duration
}

// Benchmark is driven by Run: Setup once, Test from every Worker
// concurrently, Teardown once.
type Benchmark interface {
	Setup(ctx context.Context) error
	// Worker returns the per-goroutine probe. rng belongs to that worker only.
	Worker(ctx context.Context, id int, rng *rand.Rand) (Worker, error)
	Teardown(ctx context.Context) error
}

// Worker owns one connection. Test returns the number of validated rows.
type Worker interface {
	Test(ctx context.Context) (int, error)
	Close() error
}
