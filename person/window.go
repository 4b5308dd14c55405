package person

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var ErrInvalidPerson = errors.New("invalid person retrieved")

// ValidationError reports a row returned outside of the queried window.
type ValidationError struct {
	Min    float64
	Max    float64
	Salary float64
	ID     int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v [min=%v, max=%v, salary=%v, id=%d]", ErrInvalidPerson, e.Min, e.Max, e.Salary, e.ID)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidPerson }

// Window is the inclusive salary range of a single probe.
type Window struct {
	Min float64
	Max float64
}

// NewWindow draws Min uniformly from [0, rangeSize*1000) using rng, which
// must be owned by the calling worker.
func NewWindow(rng *rand.Rand, rangeSize int) Window {
	min := rng.Float64() * float64(rangeSize) * SalaryStep
	return Window{Min: min, Max: min + SalaryStep}
}

func (w Window) Contains(salary float64) bool {
	return salary >= w.Min && salary <= w.Max
}

// Check returns a *ValidationError when salary lies outside w.
func (w Window) Check(id int64, salary float64) error {
	if w.Contains(salary) {
		return nil
	}
	return &ValidationError{Min: w.Min, Max: w.Max, Salary: salary, ID: id}
}

// Expected lists the ids a correct query for w returns from a table
// populated with rangeSize rows.
func (w Window) Expected(rangeSize int) []int {
	lo := int(math.Ceil(w.Min / SalaryStep))
	hi := int(math.Floor(w.Max / SalaryStep))
	if lo < 0 {
		lo = 0
	}
	if hi > rangeSize-1 {
		hi = rangeSize - 1
	}
	var ids []int
	for id := lo; id <= hi; id++ {
		if w.Contains(Row(id).Salary) {
			ids = append(ids, id)
		}
	}
	return ids
}
