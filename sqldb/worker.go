package sqldb

import (
	"context"
	"database/sql"
	"math/rand/v2"

	"rangequery-bench/person"
)

type worker struct {
	conn      *sql.Conn
	rng       *rand.Rand
	rangeSize int
	query     string
}

// Test runs one probe: a read-only transaction preparing the range query,
// reading every row forward once and checking its salary against the window.
func (w *worker) Test(ctx context.Context) (int, error) {
	win := person.NewWindow(w.rng, w.rangeSize)

	tx, err := w.conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, w.query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, win.Min, win.Max)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			id    int64
			orgID sql.NullInt64
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
	return n, tx.Commit()
}

func (w *worker) Close() error {
	return w.conn.Close()
}
