package pg

import (
	"context"
	"errors"
	"fmt"

	"rangequery-bench/bench"
	"rangequery-bench/sqldb"

	zlog "github.com/rs/zerolog/log"
)

// Run benchmarks the PERSON range query through the native pgx backend.
func Run(ctx context.Context, cfg bench.ConnConfig, params bench.BenchParams) (stats bench.BenchStats, err error) {
	bench.PrintHeader("PostgreSQL Range Query Benchmark (pgx)", params)

	if params.CreateTempDatabase {
		fmt.Println("[0/2] Creating disposable database...")
		drop, terr := tempDatabase(ctx, &cfg)
		if terr != nil {
			return stats, terr
		}
		defer func() {
			if derr := drop(); derr != nil {
				err = errors.Join(err, derr)
			}
		}()
		fmt.Printf("  ✓ Created %s\n\n", cfg.Database)
	}

	fmt.Println("[1/2] Connecting to PostgreSQL...")
	pool, err := Connect(cfg, params.Concurrency+1)
	if err != nil {
		return stats, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	fmt.Println("  ✓ Connected")
	zlog.Info().Str("host", cfg.Host).Str("database", cfg.Database).Str("driver", "pgx").Msg("Connected")

	fmt.Println("\n[2/2] Populating and running benchmark...")
	return bench.Run(ctx, New(pool, params), params, "PostgreSQL Range Query (pgx)")
}

// RunSQL is Run over database/sql and lib/pq.
func RunSQL(ctx context.Context, cfg bench.ConnConfig, params bench.BenchParams) (stats bench.BenchStats, err error) {
	bench.PrintHeader("PostgreSQL Range Query Benchmark (database/sql)", params)

	if params.CreateTempDatabase {
		fmt.Println("[0/2] Creating disposable database...")
		drop, terr := tempDatabase(ctx, &cfg)
		if terr != nil {
			return stats, terr
		}
		defer func() {
			if derr := drop(); derr != nil {
				err = errors.Join(err, derr)
			}
		}()
		fmt.Printf("  ✓ Created %s\n\n", cfg.Database)
	}

	fmt.Println("[1/2] Connecting to PostgreSQL...")
	db, err := OpenSQL(cfg, params.Concurrency+1)
	if err != nil {
		return stats, fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	fmt.Println("  ✓ Connected")
	zlog.Info().Str("host", cfg.Host).Str("database", cfg.Database).Str("driver", "pq").Msg("Connected")

	fmt.Println("\n[2/2] Populating and running benchmark...")
	return bench.Run(ctx, sqldb.New(db, SQLDialect, params), params, "PostgreSQL Range Query (database/sql)")
}

// tempDatabase creates a disposable database next to cfg.Database and points
// cfg at it. The returned func drops it; it must run after the benchmark
// pool is closed.
func tempDatabase(ctx context.Context, cfg *bench.ConnConfig) (func() error, error) {
	admin, err := Connect(*cfg, 1)
	if err != nil {
		return nil, fmt.Errorf("admin connection: %w", err)
	}

	name := bench.TempDatabaseName()
	if err := CreateDatabase(ctx, admin, name); err != nil {
		admin.Close()
		return nil, err
	}
	cfg.Database = name

	return func() error {
		defer admin.Close()
		return DropDatabase(context.WithoutCancel(ctx), admin, name)
	}, nil
}
