// Package report filters trips by period and reduces them to totals.
package report

import (
	"errors"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

// Period selects which trips a report covers.
type Period string

const (
	PeriodAll       Period = "all"
	PeriodThisMonth Period = "this-month"
	PeriodCustom    Period = "custom"
)

// ErrInvalidPeriod is returned for an unknown period selector.
var ErrInvalidPeriod = errors.New("invalid report period")

// ParsePeriod converts a query value to a Period. Empty means all.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodThisMonth:
		return PeriodThisMonth, nil
	case PeriodCustom:
		return PeriodCustom, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Selector is a period plus the optional bounds used by PeriodCustom.
type Selector struct {
	Period Period
	From   *time.Time
	To     *time.Time
}

// Summary is the result of a report.
type Summary struct {
	Trips   []*model.Trip
	Count   int
	TotalKm float64
	From    *time.Time
	To      *time.Time
}

// Aggregate filters trips by the selector and totals the kilometers.
// now decides which month PeriodThisMonth refers to.
// A custom period with a missing bound matches no trips.
func Aggregate(trips []*model.Trip, sel Selector, now time.Time) (*Summary, error) {
	from, to, all, err := bounds(sel, now)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Trips: make([]*model.Trip, 0, len(trips)),
		From:  from,
		To:    to,
	}

	for _, trip := range trips {
		if !all && !within(trip.Date, from, to) {
			continue
		}
		summary.Trips = append(summary.Trips, trip)
		summary.TotalKm += trip.Km
	}
	summary.Count = len(summary.Trips)

	return summary, nil
}

// bounds resolves the inclusive date range of a selector.
// all reports whether the selector disables filtering entirely.
func bounds(sel Selector, now time.Time) (from, to *time.Time, all bool, err error) {
	switch sel.Period {
	case "", PeriodAll:
		return nil, nil, true, nil
	case PeriodThisMonth:
		start, end := MonthBounds(now)
		return &start, &end, false, nil
	case PeriodCustom:
		if sel.From == nil || sel.To == nil {
			return sel.From, sel.To, false, nil
		}
		start := model.CalendarDate(*sel.From)
		end := model.CalendarDate(*sel.To)
		return &start, &end, false, nil
	default:
		return nil, nil, false, ErrInvalidPeriod
	}
}

// MonthBounds returns the first and last calendar day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func within(date time.Time, from, to *time.Time) bool {
	if from == nil || to == nil {
		return false
	}
	d := model.CalendarDate(date)
	return !d.Before(*from) && !d.After(*to)
}
