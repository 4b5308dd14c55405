// Package lite is the embedded SQLite target. The disposable database is a
// temporary file removed when the run ends.
package lite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"rangequery-bench/bench"
	"rangequery-bench/sqldb"

	_ "github.com/mattn/go-sqlite3"
	zlog "github.com/rs/zerolog/log"
)

var Dialect = sqldb.Dialect{
	Name: "sqlite",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS PERSON (
			id INTEGER PRIMARY KEY,
			org_id INTEGER,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			salary DOUBLE
		)`,
		`CREATE INDEX IF NOT EXISTS person_salary_idx ON PERSON (salary)`,
	},
}

// Open opens the SQLite file at path in WAL mode so readers on separate
// connections do not block each other.
func Open(path string, maxConns int) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run benchmarks the SQLite file at cfg.Path, or a temporary file when
// params.CreateTempDatabase is set.
func Run(ctx context.Context, cfg bench.ConnConfig, params bench.BenchParams) (bench.BenchStats, error) {
	path := cfg.Path
	if params.CreateTempDatabase {
		dir, err := os.MkdirTemp("", "rangebench")
		if err != nil {
			return bench.BenchStats{}, fmt.Errorf("temp database: %w", err)
		}
		defer os.RemoveAll(dir)
		path = filepath.Join(dir, bench.TempDatabaseName()+".db")
	}
	if path == "" {
		return bench.BenchStats{}, fmt.Errorf("sqlite: -path or -temp-db is required")
	}

	bench.PrintHeader("SQLite Range Query Benchmark", params)

	fmt.Printf("[1/2] Opening %s...\n", path)
	db, err := Open(path, params.Concurrency+1)
	if err != nil {
		return bench.BenchStats{}, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	zlog.Info().Str("path", path).Bool("disposable", params.CreateTempDatabase).Msg("Connected")

	fmt.Println("\n[2/2] Populating and running benchmark...")
	return bench.Run(ctx, sqldb.New(db, Dialect, params), params, "SQLite Range Query")
}
