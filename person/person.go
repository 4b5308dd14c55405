// Package person holds the synthetic PERSON dataset shared by every backend:
// the row generator, the fixed statement text and the salary window checks.
package person

import (
	"context"
	"strconv"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"
)

const Table = "PERSON"

const (
	SelectQuery = "select id, org_id, first_name, last_name, salary from PERSON where salary >= ? and salary <= ?"
	InsertQuery = "insert into PERSON(id, first_name, last_name, salary) values(?, ?, ?, ?)"
	DeleteQuery = "delete from PERSON"
	CountQuery  = "select count(*) from PERSON"
)

// SalaryStep is the salary distance between consecutive ids and also the
// width of a query window.
const SalaryStep = 1000.0

// progressEvery controls how often Populate logs.
const progressEvery = 100000

type Person struct {
	ID        int
	OrgID     *int64
	FirstName string
	LastName  string
	Salary    float64
}

// Row returns the deterministic row for id.
func Row(id int) Person {
	s := strconv.Itoa(id)
	return Person{
		ID:        id,
		FirstName: "firstName" + s,
		LastName:  "lastName" + s,
		Salary:    float64(id) * SalaryStep,
	}
}

// Args returns the insert parameters in InsertQuery order.
func (p Person) Args() []any {
	return []any{p.ID, p.FirstName, p.LastName, p.Salary}
}

// Populate hands rows 0..n-1 to add in id order. It checks ctx before every
// row and returns ctx.Err() without visiting the remaining ids once ctx is
// done; the caller must not commit in that case.
func Populate(ctx context.Context, n int, add func(Person) error) error {
	zlog.Info().Int("range", n).Msg("Populating query data...")
	start := time.Now()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			zlog.Warn().Int("populated", i).Msg("Populate interrupted")
			return err
		}
		if err := add(Row(i)); err != nil {
			return err
		}
		if i%progressEvery == 0 {
			zlog.Info().Int("persons", i).Msg("Populated persons")
		}
	}

	zlog.Info().Int64("ms", time.Since(start).Milliseconds()).Msg("Finished populating query data")
	return nil
}

// Rebind rewrites ? placeholders to the $1, $2, ... form used by PostgreSQL.
// The statements in this package never contain quoted question marks.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
