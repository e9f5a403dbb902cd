package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyTable = errors.New("period table must not be empty")

var ErrNonPositivePeriod = errors.New("period table entries must be positive durations")

// Table is a fixed, ordered, cyclic sequence of wait durations between
// eligible charges. It is set once at service creation and never mutated.
type Table struct {
	periods []time.Duration
}

// New validates and builds a period table. The sequence must be non-empty and
// every entry must be a positive duration, otherwise schedule advancement
// could loop forever.
func New(periods []time.Duration) (*Table, error) {
	if len(periods) == 0 {
		return nil, ErrEmptyTable
	}

	for i, p := range periods {
		if p <= 0 {
			return nil, fmt.Errorf("period %d (%s): %w", i, p, ErrNonPositivePeriod)
		}
	}

	t := &Table{periods: make([]time.Duration, len(periods))}
	copy(t.periods, periods)
	return t, nil
}

// Parse reads a comma-separated list of Go durations, e.g. "720h,720h,1440h".
func Parse(s string) ([]time.Duration, error) {
	parts := strings.Split(s, ",")
	periods := make([]time.Duration, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("parsing period %q: %w", part, err)
		}
		periods = append(periods, d)
	}

	return periods, nil
}

func (t *Table) Len() int {
	return len(t.periods)
}

// At returns the period at position i. Indexing is cyclic: positions wrap
// around to the start of the table, negative positions wrap backwards.
func (t *Table) At(i int) time.Duration {
	n := len(t.periods)
	return t.periods[((i%n)+n)%n]
}

// Advance walks the table from position idx, adding one period at a time to
// next until it lands strictly after now, and returns the new eligible time
// together with the table position of the following period.
//
// This is a catch-up walk: when several eligible windows have elapsed
// unclaimed, each skipped period is still consumed in table order. Missed
// charges therefore never bank up into a single oversized gap and the cyclic
// phase of the schedule is preserved.
func (t *Table) Advance(next time.Time, idx int, now time.Time) (time.Time, int) {
	n := len(t.periods)
	// Go's % preserves sign, so normalize out-of-range positions (e.g. a
	// hand-edited persisted record) instead of panicking on a negative index.
	idx = ((idx % n) + n) % n
	for !next.After(now) {
		next = next.Add(t.periods[idx])
		idx = (idx + 1) % n
	}
	return next, idx
}
