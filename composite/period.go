// Package composite builds per-period cloud-free band composites by
// trying a fixed chain of scene selection strategies, from strict
// cloud limits to relaxed limits over a widened acquisition window.
package composite

import (
	"fmt"
	"time"
)

// Period is a compositing time window: a calendar year, or one of its
// halves when Half is 1 or 2.
type Period struct {
	Year int
	Half int
}

// Label returns the period's name as used in output filenames
func (p Period) Label() string {
	if p.Half == 0 {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%d_S%d", p.Year, p.Half)
}

// Range returns the inclusive UTC time bounds of the period
func (p Period) Range() (time.Time, time.Time) {
	switch p.Half {
	case 1:
		return time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(p.Year, 6, 30, 23, 59, 59, 0, time.UTC)
	case 2:
		return time.Date(p.Year, 7, 1, 0, 0, 0, 0, time.UTC),
			time.Date(p.Year, 12, 31, 23, 59, 59, 0, time.UTC)
	default:
		return time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(p.Year, 12, 31, 23, 59, 59, 0, time.UTC)
	}
}

// Expanded returns the period bounds widened by the given number of
// days on each side
func (p Period) Expanded(days int) (time.Time, time.Time) {
	start, end := p.Range()
	return start.AddDate(0, 0, -days), end.AddDate(0, 0, days)
}

// Periods generates the sequence of periods covering the given years.
// With semesters set, each year yields two half-year periods.
func Periods(firstYear, lastYear int, semesters bool) []Period {
	periods := []Period{}
	for year := firstYear; year <= lastYear; year++ {
		if semesters {
			periods = append(periods, Period{Year: year, Half: 1}, Period{Year: year, Half: 2})
		} else {
			periods = append(periods, Period{Year: year})
		}
	}
	return periods
}
