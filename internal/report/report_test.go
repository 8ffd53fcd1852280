package report

import (
	"errors"
	"testing"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func trips(dates ...time.Time) []*model.Trip {
	out := make([]*model.Trip, len(dates))
	for i, d := range dates {
		out[i] = &model.Trip{ID: d.Format(model.DateLayout), Date: d, Km: 10.5}
	}
	return out
}

func ids(s *Summary) []string {
	out := make([]string, len(s.Trips))
	for i, t := range s.Trips {
		out[i] = t.ID
	}
	return out
}

func TestAggregate_All(t *testing.T) {
	t.Parallel()

	in := []*model.Trip{
		{ID: "a", Date: day(2023, 1, 1), Km: 12.3},
		{ID: "b", Date: day(2024, 6, 30), Km: 7.7},
		{ID: "c", Date: day(2025, 2, 14), Km: 30},
	}

	s, err := Aggregate(in, Selector{Period: PeriodAll}, day(2024, 6, 1))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.TotalKm != 12.3+7.7+30 {
		t.Errorf("TotalKm = %v, want %v", s.TotalKm, 12.3+7.7+30)
	}
}

func TestAggregate_ThisMonth_Boundaries(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 2, 14, 15, 30, 0, 0, time.UTC)
	in := trips(
		day(2024, 1, 31), // day before
		day(2024, 2, 1),  // first day
		day(2024, 2, 29), // last day (leap year)
		day(2024, 3, 1),  // day after
	)

	s, err := Aggregate(in, Selector{Period: PeriodThisMonth}, now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	got := ids(s)
	want := []string{"2024-02-01", "2024-02-29"}
	if len(got) != len(want) {
		t.Fatalf("trips = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trips[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if s.TotalKm != 21 {
		t.Errorf("TotalKm = %v, want 21", s.TotalKm)
	}
}

func TestAggregate_ThisMonth_LastInstantIncluded(t *testing.T) {
	t.Parallel()

	now := day(2024, 4, 10)
	in := []*model.Trip{
		{ID: "late", Date: time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), Km: 1},
	}

	s, err := Aggregate(in, Selector{Period: PeriodThisMonth}, now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if s.Count != 1 {
		t.Errorf("Count = %d, want 1", s.Count)
	}
}

func TestAggregate_Custom(t *testing.T) {
	t.Parallel()

	in := trips(day(2023, 12, 31), day(2024, 1, 1), day(2024, 1, 15), day(2024, 1, 31), day(2024, 2, 1))
	sel := Selector{Period: PeriodCustom, From: ptr(day(2024, 1, 1)), To: ptr(day(2024, 1, 31))}

	s, err := Aggregate(in, sel, day(2024, 6, 1))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	got := ids(s)
	want := []string{"2024-01-01", "2024-01-15", "2024-01-31"}
	if len(got) != len(want) {
		t.Fatalf("trips = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trips[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAggregate_CustomMissingBoundIsEmpty(t *testing.T) {
	t.Parallel()

	in := trips(day(2024, 1, 15))

	tests := []struct {
		name string
		sel  Selector
	}{
		{"no bounds", Selector{Period: PeriodCustom}},
		{"only from", Selector{Period: PeriodCustom, From: ptr(day(2024, 1, 1))}},
		{"only to", Selector{Period: PeriodCustom, To: ptr(day(2024, 1, 31))}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := Aggregate(in, tt.sel, day(2024, 1, 20))
			if err != nil {
				t.Fatalf("Aggregate: %v", err)
			}
			if s.Count != 0 || s.TotalKm != 0 {
				t.Errorf("got %d trips / %v km, want empty", s.Count, s.TotalKm)
			}
		})
	}
}

func TestAggregate_InvalidPeriod(t *testing.T) {
	t.Parallel()

	_, err := Aggregate(nil, Selector{Period: "last-year"}, time.Now())
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestAggregate_IsPure(t *testing.T) {
	t.Parallel()

	in := trips(day(2024, 1, 15), day(2024, 2, 15))
	sel := Selector{Period: PeriodThisMonth}
	now := day(2024, 1, 3)

	first, _ := Aggregate(in, sel, now)
	second, _ := Aggregate(in, sel, now)

	if first.Count != second.Count || first.TotalKm != second.TotalKm {
		t.Error("repeated aggregation produced different results")
	}
	if len(in) != 2 {
		t.Error("input slice was modified")
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodAll, false},
		{"all", PeriodAll, false},
		{"this-month", PeriodThisMonth, false},
		{"custom", PeriodCustom, false},
		{"yesterday", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePeriod(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	t.Parallel()

	start, end := MonthBounds(time.Date(2023, 12, 25, 8, 0, 0, 0, time.UTC))
	if !start.Equal(day(2023, 12, 1)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(day(2023, 12, 31)) {
		t.Errorf("end = %v", end)
	}
}
