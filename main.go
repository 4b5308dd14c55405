package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rangequery-bench/bench"
	"rangequery-bench/lite"
	"rangequery-bench/my"
	"rangequery-bench/pg"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func setupLogging(disableLog bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	var zlevel zerolog.Level
	if disableLog {
		zlevel = zerolog.Disabled
	} else if level == "debug" {
		zlevel = zerolog.DebugLevel
	} else {
		zlevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zlevel)
}

type runFunc func(context.Context, bench.ConnConfig, bench.BenchParams) (bench.BenchStats, error)

var backends = map[string]runFunc{
	"postgres":     pg.Run,
	"postgres-sql": pg.RunSQL,
	"mysql":        my.Run,
	"sqlite":       lite.Run,
}

func main() {
	if err := loadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: .env: %v\n", err)
		os.Exit(1)
	}

	cfg := defaultConfig()
	if path := confPath(os.Args[1:]); path != "" {
		if err := loadConfig(path, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: config %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	cmd := flag.NewFlagSet("rangequery-bench", flag.ExitOnError)
	cmd.String("conf", "", "YAML config file (flags override it)")

	// Target
	cmd.StringVar(&cfg.DB, "db", cfg.DB, "Database type: postgres, postgres-sql, mysql, sqlite")
	cmd.StringVar(&cfg.Host, "host", cfg.Host, "Database host")
	cmd.IntVar(&cfg.Port, "port", cfg.Port, "Database port (default 5432 / 3306)")
	cmd.StringVar(&cfg.User, "user", cfg.User, "Database user")
	cmd.StringVar(&cfg.Password, "pass", cfg.Password, "Database password (default $RANGEBENCH_PASSWORD)")
	cmd.StringVar(&cfg.Database, "database", cfg.Database, "Database name")
	cmd.StringVar(&cfg.SSLMode, "sslmode", cfg.SSLMode, "PostgreSQL sslmode")
	cmd.StringVar(&cfg.Path, "path", cfg.Path, "SQLite database file")

	// Benchmark parameters
	cmd.IntVar(&cfg.Range, "range", cfg.Range, "Number of PERSON rows to populate")
	cmd.BoolVar(&cfg.TempDB, "temp-db", cfg.TempDB, "Run in a disposable database instead of clearing PERSON")
	cmd.IntVar(&cfg.Queries, "queries", cfg.Queries, "Number of queries to run")
	cmd.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Concurrent workers")
	cmd.IntVar(&cfg.Warmup, "warmup", cfg.Warmup, "Warmup queries before measuring")
	cmd.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Run for a fixed time instead of -queries")
	cmd.IntVar(&cfg.Runs, "runs", cfg.Runs, "Measurement runs, the median is reported")
	cmd.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for the worker random sources (0 = random)")

	cmd.BoolVar(&cfg.NoLog, "no-log", cfg.NoLog, "Disables the log")
	cmd.StringVar(&cfg.LogLevel, "level", cfg.LogLevel, "Log level (info|debug)")

	cmd.Parse(os.Args[1:])
	setupLogging(cfg.NoLog, cfg.LogLevel)

	run, ok := backends[cfg.DB]
	if !ok {
		fmt.Printf("Database type '%s' not yet implemented\n", cfg.DB)
		os.Exit(1)
	}
	if cfg.DB != "sqlite" && cfg.Host == "" {
		fmt.Println("Usage: rangequery-bench -db postgres|postgres-sql|mysql -host H -user U -database D [flags]")
		fmt.Println("       rangequery-bench -db sqlite -path FILE | -temp-db [flags]")
		fmt.Println()
		cmd.PrintDefaults()
		os.Exit(1)
	}
	if cfg.Range < 0 {
		fmt.Println("Error: -range must not be negative")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := run(ctx, cfg.conn(), cfg.params())
	if stats.Total > 0 {
		bench.PrintStats(stats)
	}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		zlog.Warn().Err(err).Msg("Interrupted")
	default:
		fmt.Printf("  ✗ Benchmark failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
