package sqldb_test

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"rangequery-bench/bench"
	"rangequery-bench/lite"
	"rangequery-bench/person"
	"rangequery-bench/sqldb"

	"github.com/stretchr/testify/require"
)

// fixedSource makes rng.Float64 return roughly f on every call.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }

func fixedRand(f float64) *rand.Rand {
	return rand.New(fixedSource(uint64(f * (1 << 53))))
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := lite.Open(filepath.Join(t.TempDir(), "bench.db"), 8)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setup(t *testing.T, db *sql.DB, params bench.BenchParams) *sqldb.Benchmark {
	t.Helper()
	b := sqldb.New(db, lite.Dialect, params)
	require.NoError(t, b.Setup(context.Background()))
	return b
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(person.CountQuery).Scan(&n))
	return n
}

func test(t *testing.T, b *sqldb.Benchmark, rng *rand.Rand) (int, error) {
	t.Helper()
	w, err := b.Worker(context.Background(), 0, rng)
	require.NoError(t, err)
	defer w.Close()
	return w.Test(context.Background())
}

func TestSetupPopulatesRange(t *testing.T) {
	db := openDB(t)
	setup(t, db, bench.BenchParams{Range: 250})

	rows, err := db.Query("select id, org_id, first_name, last_name, salary from PERSON order by id")
	require.NoError(t, err)
	defer rows.Close()

	want := 0
	for rows.Next() {
		var (
			id    int
			orgID sql.NullInt64
			p     person.Person
		)
		require.NoError(t, rows.Scan(&id, &orgID, &p.FirstName, &p.LastName, &p.Salary))
		p.ID = id
		require.Equal(t, person.Row(want), p)
		require.False(t, orgID.Valid)
		want++
	}
	require.NoError(t, rows.Err())
	require.Equal(t, 250, want)
}

func TestSetupZeroRange(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 0})
	require.Zero(t, count(t, db))

	n, err := test(t, b, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Zero(t, n)
}

// cancelAfter reports cancellation once Err has been polled limit times.
type cancelAfter struct {
	context.Context
	limit int
	calls int
}

func (c *cancelAfter) Err() error {
	c.calls++
	if c.calls > c.limit {
		return context.Canceled
	}
	return nil
}

func TestSetupCanceledCommitsNothing(t *testing.T) {
	db := openDB(t)
	setup(t, db, bench.BenchParams{Range: 0})

	b := sqldb.New(db, lite.Dialect, bench.BenchParams{Range: 1000})
	err := b.Setup(&cancelAfter{Context: context.Background(), limit: 50})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, count(t, db))
}

func TestSetupBatchFailureKeepsTable(t *testing.T) {
	db := openDB(t)
	setup(t, db, bench.BenchParams{Range: 10})

	// ids 0..9 exist already, so the second batch violates the primary key.
	b := sqldb.New(db, lite.Dialect, bench.BenchParams{Range: 20})
	err := b.Setup(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert person 0")
	require.Equal(t, 10, count(t, db))
}

func TestProbeExampleWindow(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 5})

	// min ~ 1500, max ~ 2500 selects id 2 only.
	n, err := test(t, b, fixedRand(0.3))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestProbeZeroMatches(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 5})

	// min ~ 4500 lies past the last salary (4000).
	n, err := test(t, b, fixedRand(0.9))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProbeMatchesExpectedRows(t *testing.T) {
	const rangeSize = 300
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: rangeSize})

	w, err := b.Worker(context.Background(), 0, rand.New(rand.NewPCG(42, 0)))
	require.NoError(t, err)
	defer w.Close()

	// twin draws the same windows as the worker.
	twin := rand.New(rand.NewPCG(42, 0))
	for i := 0; i < 200; i++ {
		n, err := w.Test(context.Background())
		require.NoError(t, err)
		want := person.NewWindow(twin, rangeSize).Expected(rangeSize)
		require.Len(t, want, n, "probe %d", i)
	}
}

func TestProbeRejectsRowOutsideWindow(t *testing.T) {
	db := openDB(t)
	setup(t, db, bench.BenchParams{Range: 5})

	broken := lite.Dialect
	broken.Bind = func(q string) string {
		return strings.Replace(q, "salary >= ? and salary <= ?", "salary >= ? or salary <= ?", 1)
	}
	b := sqldb.New(db, broken, bench.BenchParams{Range: 5})

	_, err := test(t, b, fixedRand(0.3))
	require.ErrorIs(t, err, person.ErrInvalidPerson)
	var verr *person.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, float64(verr.ID)*person.SalaryStep, verr.Salary)
	require.False(t, person.Window{Min: verr.Min, Max: verr.Max}.Contains(verr.Salary))
	require.InDelta(t, 1500, verr.Min, 0.001)
}

func TestTeardown(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 50})

	require.NoError(t, b.Teardown(context.Background()))
	require.Zero(t, count(t, db))
	require.NoError(t, b.Teardown(context.Background()))
}

func TestTeardownDisposableKeepsRows(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 50, CreateTempDatabase: true})

	require.NoError(t, b.Teardown(context.Background()))
	require.Equal(t, 50, count(t, db))
}

func TestTeardownRunsOnce(t *testing.T) {
	db := openDB(t)
	b := setup(t, db, bench.BenchParams{Range: 5})
	require.NoError(t, b.Teardown(context.Background()))

	// Rows added after the first teardown stay: later calls do nothing.
	setup(t, db, bench.BenchParams{Range: 5})
	require.NoError(t, b.Teardown(context.Background()))
	require.Equal(t, 5, count(t, db))
}

func TestRunConcurrent(t *testing.T) {
	bench.Cooldown = 0
	db := openDB(t)
	params := bench.BenchParams{
		Range:       500,
		Queries:     400,
		Concurrency: 4,
		Warmup:      5,
		Runs:        2,
		Seed:        7,
	}

	stats, err := bench.Run(context.Background(), sqldb.New(db, lite.Dialect, params), params, "sqlite")
	require.NoError(t, err)
	require.Equal(t, 400, stats.Total)
	require.Zero(t, stats.Errors)
	require.Greater(t, stats.Rows, 0)
	require.Zero(t, count(t, db))
}
