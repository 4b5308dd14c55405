// Package sqldb runs the PERSON range query benchmark over database/sql, so
// any registered driver can serve as the target. Backends supply a Dialect
// with their DDL and placeholder style.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"sync"

	"rangequery-bench/bench"
	"rangequery-bench/person"

	zlog "github.com/rs/zerolog/log"
)

// Dialect adapts the shared PERSON statements to one database.
type Dialect struct {
	Name string
	// Schema is executed in order by Setup and must be idempotent.
	Schema []string
	// Bind rewrites ? placeholders; nil keeps them as is.
	Bind func(query string) string
}

func (d Dialect) bind(query string) string {
	if d.Bind == nil {
		return query
	}
	return d.Bind(query)
}

type Benchmark struct {
	db          *sql.DB
	dialect     Dialect
	rangeSize   int
	disposable  bool
	insertQuery string
	selectQuery string

	teardownOnce sync.Once
	teardownErr  error
}

var _ bench.Benchmark = (*Benchmark)(nil)

func New(db *sql.DB, dialect Dialect, params bench.BenchParams) *Benchmark {
	return &Benchmark{
		db:          db,
		dialect:     dialect,
		rangeSize:   params.Range,
		disposable:  params.CreateTempDatabase,
		insertQuery: dialect.bind(person.InsertQuery),
		selectQuery: dialect.bind(person.SelectQuery),
	}
}

// Setup creates the PERSON schema and inserts rows 0..Range-1 in a single
// transaction. Nothing is committed unless every row was inserted.
func (b *Benchmark) Setup(ctx context.Context) error {
	for _, ddl := range b.dialect.Schema {
		if _, err := b.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return b.populate(ctx)
}

func (b *Benchmark) populate(ctx context.Context) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin populate: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var rows batch
	if err := person.Populate(ctx, b.rangeSize, rows.add); err != nil {
		return err
	}
	if err := rows.exec(ctx, tx, b.insertQuery); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit populate: %w", err)
	}
	return nil
}

func (b *Benchmark) Worker(ctx context.Context, id int, rng *rand.Rand) (bench.Worker, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &worker{
		conn:      conn,
		rng:       rng,
		rangeSize: b.rangeSize,
		query:     b.selectQuery,
	}, nil
}

// Teardown deletes every PERSON row unless the database is disposable. Only
// the first call does any work; later calls return the same result.
func (b *Benchmark) Teardown(ctx context.Context) error {
	b.teardownOnce.Do(func() {
		if b.disposable {
			zlog.Info().Str("db", b.dialect.Name).Msg("Disposable database, skipping PERSON cleanup")
			return
		}
		res, err := b.db.ExecContext(ctx, person.DeleteQuery)
		if err != nil {
			b.teardownErr = fmt.Errorf("clear table %s: %w", person.Table, err)
			return
		}
		n, _ := res.RowsAffected()
		zlog.Info().Str("db", b.dialect.Name).Int64("rows", n).Msg("Cleared PERSON")
	})
	return b.teardownErr
}

// batch holds the rows of one populate and writes them in a single exec
// through one prepared statement.
type batch struct {
	rows []person.Person
}

func (b *batch) add(p person.Person) error {
	b.rows = append(b.rows, p)
	return nil
}

func (b *batch) exec(ctx context.Context, tx *sql.Tx, query string) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range b.rows {
		if _, err := stmt.ExecContext(ctx, p.Args()...); err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}
	return nil
}
