package pg

import (
	"context"
	"os"
	"strconv"
	"testing"

	"rangequery-bench/bench"

	"github.com/stretchr/testify/require"
)

// testConn reads a PostgreSQL target from RANGEBENCH_PG_* and skips when
// none is configured.
func testConn(t *testing.T) bench.ConnConfig {
	host := os.Getenv("RANGEBENCH_PG_HOST")
	if host == "" {
		t.Skip("RANGEBENCH_PG_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("RANGEBENCH_PG_PORT"))
	if port == 0 {
		port = 5432
	}
	return bench.ConnConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("RANGEBENCH_PG_USER"),
		Password: os.Getenv("RANGEBENCH_PG_PASSWORD"),
		Database: os.Getenv("RANGEBENCH_PG_DATABASE"),
	}
}

func TestStatements(t *testing.T) {
	require.Equal(t, "insert into PERSON(id, first_name, last_name, salary) values($1, $2, $3, $4)", insertQuery)
	require.Equal(t, "select id, org_id, first_name, last_name, salary from PERSON where salary >= $1 and salary <= $2", selectQuery)
}

func TestDSN(t *testing.T) {
	c := bench.ConnConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d"}
	require.Equal(t, "postgres://u:p@h:5433/d?sslmode=disable", dsn(c))
	c.SSLMode = "require"
	require.Equal(t, "postgres://u:p@h:5433/d?sslmode=require", dsn(c))
}

func TestRunPgx(t *testing.T) {
	cfg := testConn(t)
	params := bench.BenchParams{Range: 2000, CreateTempDatabase: true, Queries: 200, Concurrency: 4, Seed: 3}
	stats, err := Run(context.Background(), cfg, params)
	require.NoError(t, err)
	require.Equal(t, 200, stats.Total)
	require.Zero(t, stats.Errors)
}

func TestRunDatabaseSQL(t *testing.T) {
	cfg := testConn(t)
	params := bench.BenchParams{Range: 2000, CreateTempDatabase: true, Queries: 200, Concurrency: 4, Seed: 3}
	stats, err := RunSQL(context.Background(), cfg, params)
	require.NoError(t, err)
	require.Equal(t, 200, stats.Total)
	require.Zero(t, stats.Errors)
}

func TestSetupTeardownPgx(t *testing.T) {
	cfg := testConn(t)
	ctx := context.Background()

	admin, err := Connect(cfg, 1)
	require.NoError(t, err)
	defer admin.Close()
	name := bench.TempDatabaseName()
	require.NoError(t, CreateDatabase(ctx, admin, name))
	defer DropDatabase(ctx, admin, name)

	cfg.Database = name
	pool, err := Connect(cfg, 4)
	require.NoError(t, err)
	defer pool.Close()

	b := New(pool, bench.BenchParams{Range: 5})
	require.NoError(t, b.Setup(ctx))

	var n int
	require.NoError(t, pool.QueryRow(ctx, "select count(*) from PERSON where salary = id * 1000").Scan(&n))
	require.Equal(t, 5, n)

	w, err := b.Worker(ctx, 0, bench.NewRand(11, 0))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err := w.Test(ctx)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	require.NoError(t, b.Teardown(ctx))
	require.NoError(t, pool.QueryRow(ctx, "select count(*) from PERSON").Scan(&n))
	require.Zero(t, n)
}
