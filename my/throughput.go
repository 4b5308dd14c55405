package my

import (
	"context"
	"errors"
	"fmt"

	"rangequery-bench/bench"
	"rangequery-bench/sqldb"

	zlog "github.com/rs/zerolog/log"
)

// Run benchmarks the PERSON range query against cfg. With
// params.CreateTempDatabase a fresh database is created next to
// cfg.Database and dropped afterwards.
func Run(ctx context.Context, cfg bench.ConnConfig, params bench.BenchParams) (stats bench.BenchStats, err error) {
	bench.PrintHeader("MySQL Range Query Benchmark", params)

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

	fmt.Println("[1/2] Connecting to MySQL...")
	db, err := Connect(cfg, params.Concurrency+1)
	if err != nil {
		return stats, fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	fmt.Println("  ✓ Connected")
	zlog.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected")

	fmt.Println("\n[2/2] Populating and running benchmark...")
	return bench.Run(ctx, sqldb.New(db, Dialect, params), params, "MySQL Range Query")
}

// tempDatabase creates a disposable database on the server behind cfg and
// points cfg at it. The returned func drops it.
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
