package my

import (
	"context"
	"os"
	"strconv"
	"testing"

	"rangequery-bench/bench"

	"github.com/stretchr/testify/require"
)

func TestRunMySQL(t *testing.T) {
	host := os.Getenv("RANGEBENCH_MYSQL_HOST")
	if host == "" {
		t.Skip("RANGEBENCH_MYSQL_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("RANGEBENCH_MYSQL_PORT"))
	if port == 0 {
		port = 3306
	}
	cfg := bench.ConnConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("RANGEBENCH_MYSQL_USER"),
		Password: os.Getenv("RANGEBENCH_MYSQL_PASSWORD"),
	}

	params := bench.BenchParams{Range: 2000, CreateTempDatabase: true, Queries: 200, Concurrency: 4, Seed: 5}
	stats, err := Run(context.Background(), cfg, params)
	require.NoError(t, err)
	require.Equal(t, 200, stats.Total)
	require.Zero(t, stats.Errors)
}
