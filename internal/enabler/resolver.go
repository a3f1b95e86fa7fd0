// Package enabler resolves the weekly enabler work item a day's tasks
// are linked under.
package enabler

import (
	"context"
	"time"

	"github.com/milymoreno/timesheet/internal/logging"
)

// NoEnabler is the sentinel returned by the static table for dates with
// no configured week (holidays, gaps between plannings).
const NoEnabler = 0

// weekRange maps one inclusive date range to its enabler work item.
type weekRange struct {
	from time.Time
	to   time.Time
	id   int
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekTable is the static planning calendar. Ranges are per week; gaps
// are holidays (March 24th 2025 was one).
var weekTable = []weekRange{
	{day(2025, time.March, 3), day(2025, time.March, 9), 16345},
	{day(2025, time.March, 10), day(2025, time.March, 16), 16760},
	{day(2025, time.March, 17), day(2025, time.March, 21), 17301},
	{day(2025, time.March, 25), day(2025, time.March, 28), 17476},
}

// FromTable resolves a date against the static planning calendar,
// returning NoEnabler when the date falls outside every configured
// range.
func FromTable(date time.Time) int {
	d := day(date.Year(), date.Month(), date.Day())
	for _, week := range weekTable {
		if !d.Before(week.from) && !d.After(week.to) {
			return week.id
		}
	}
	return NoEnabler
}

// Finder searches the ticket store for an enabler active on a date.
type Finder interface {
	FindWeeklyEnabler(ctx context.Context, date time.Time, candidates []string) (int, error)
}

// Resolver combines the static table fast path with the dynamic ticket
// store search.
type Resolver struct {
	finder     Finder
	candidates []string
}

// NewResolver builds a resolver using the given store search and the
// candidate assignees allowed to own a weekly enabler.
func NewResolver(finder Finder, candidates []string) *Resolver {
	return &Resolver{finder: finder, candidates: candidates}
}

// Resolve returns the enabler id for the date: an explicit positive
// requested id wins, then the static table, then the dynamic search.
// The error is the dynamic search failure when every strategy comes up
// empty; without a parent enabler no task can be created.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, requested int) (int, error) {
	if requested > 0 {
		return requested, nil
	}

	if id := FromTable(date); id != NoEnabler {
		logging.Info("enabler resolved from static table", "date", date.Format("2006-01-02"), "id", id)
		return id, nil
	}

	logging.Info("enabler not in static table, searching ticket store", "date", date.Format("2006-01-02"))
	id, err := r.finder.FindWeeklyEnabler(ctx, date, r.candidates)
	if err != nil {
		return 0, err
	}
	return id, nil
}
