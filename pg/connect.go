package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rangequery-bench/bench"
	"rangequery-bench/person"
	"rangequery-bench/sqldb"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS PERSON (
		id INT PRIMARY KEY,
		org_id INT,
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		salary DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS person_salary_idx ON PERSON (salary)`,
}

// SQLDialect serves the lib/pq database/sql backend.
var SQLDialect = sqldb.Dialect{
	Name:   "postgres-sql",
	Schema: Schema,
	Bind:   person.Rebind,
}

func dsn(c bench.ConnConfig) string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode)
}

func Connect(c bench.ConnConfig, maxConns int) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn(c))
	if err != nil {
		return nil, err
	}
	config.MaxConns = int32(maxConns)
	config.MinConns = 2
	if config.MinConns > config.MaxConns {
		config.MinConns = config.MaxConns
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// OpenSQL connects through database/sql and lib/pq.
func OpenSQL(c bench.ConnConfig, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn(c))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateDatabase creates the disposable database name. name must come from
// bench.TempDatabaseName.
func CreateDatabase(ctx context.Context, admin *pgxpool.Pool, name string) error {
	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// DropDatabase drops name. Every pool connected to it must be closed first.
func DropDatabase(ctx context.Context, admin *pgxpool.Pool, name string) error {
	if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}
