package pg

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"rangequery-bench/bench"
	"rangequery-bench/person"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"
)

var (
	insertQuery = person.Rebind(person.InsertQuery)
	selectQuery = person.Rebind(person.SelectQuery)
)

// Benchmark is the native pgx backend: rows go out in one pgx.Batch and each
// probe prepares a named statement on the worker's own connection.
type Benchmark struct {
	pool       *pgxpool.Pool
	rangeSize  int
	disposable bool

	teardownOnce sync.Once
	teardownErr  error
}

var _ bench.Benchmark = (*Benchmark)(nil)

func New(pool *pgxpool.Pool, params bench.BenchParams) *Benchmark {
	return &Benchmark{
		pool:       pool,
		rangeSize:  params.Range,
		disposable: params.CreateTempDatabase,
	}
}

func (b *Benchmark) Setup(ctx context.Context) error {
	for _, ddl := range Schema {
		if _, err := b.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return b.populate(ctx)
}

func (b *Benchmark) populate(ctx context.Context) (err error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin populate: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	batch := &pgx.Batch{}
	err = person.Populate(ctx, b.rangeSize, func(p person.Person) error {
		batch.Queue(insertQuery, p.Args()...)
		return nil
	})
	if err != nil {
		return err
	}
	if err := sendBatch(ctx, tx, batch); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit populate: %w", err)
	}
	return nil
}

// sendBatch flushes batch in one round trip and reports the first failed
// insert. An empty batch sends nothing.
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert person %d: %w", i, err)
		}
	}
	return br.Close()
}

func (b *Benchmark) Worker(ctx context.Context, id int, rng *rand.Rand) (bench.Worker, error) {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &worker{
		conn:      conn,
		rng:       rng,
		rangeSize: b.rangeSize,
		stmt:      fmt.Sprintf("person_range_%d", id),
	}, nil
}

func (b *Benchmark) Teardown(ctx context.Context) error {
	b.teardownOnce.Do(func() {
		if b.disposable {
			zlog.Info().Str("db", "postgres").Msg("Disposable database, skipping PERSON cleanup")
			return
		}
		tag, err := b.pool.Exec(ctx, person.DeleteQuery)
		if err != nil {
			b.teardownErr = fmt.Errorf("clear table %s: %w", person.Table, err)
			return
		}
		zlog.Info().Str("db", "postgres").Int64("rows", tag.RowsAffected()).Msg("Cleared PERSON")
	})
	return b.teardownErr
}

type worker struct {
	conn      *pgxpool.Conn
	rng       *rand.Rand
	rangeSize int
	stmt      string
}

// Test prepares the range query under a per-worker name, runs it inside a
// read-only transaction and deallocates it once the transaction is over.
func (w *worker) Test(ctx context.Context) (n int, err error) {
	win := person.NewWindow(w.rng, w.rangeSize)

	prepared := false
	defer func() {
		if !prepared {
			return
		}
		if derr := w.conn.Conn().Deallocate(context.WithoutCancel(ctx), w.stmt); derr != nil && err == nil {
			err = derr
		}
	}()

	tx, err := w.conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	sd, err := tx.Prepare(ctx, w.stmt, selectQuery)
	if err != nil {
		return 0, err
	}
	prepared = true

	rows, err := tx.Query(ctx, sd.Name, win.Min, win.Max)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			orgID *int64
			p     person.Person
		)
		if err := rows.Scan(&id, &orgID, &p.FirstName, &p.LastName, &p.Salary); err != nil {
			return n, err
		}
		if err := win.Check(id, p.Salary); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	return n, tx.Commit(ctx)
}

func (w *worker) Close() error {
	w.conn.Release()
	return nil
}
