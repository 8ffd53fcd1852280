// Package export renders trips and account data as downloadable files.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

// ErrNoTrips is returned when there is nothing to export.
var ErrNoTrips = errors.New("no trips to export")

// CSVContentType is the media type of the CSV report.
const CSVContentType = "text/csv;charset=utf-8"

var csvHeader = []string{"Date", "Start Address", "End Address", "KM", "Duration", "Purpose", "Notes"}

// tripsHeader is the column order of the full trip log kept with backups.
var tripsHeader = []string{"Date", "Purpose", "Start Address", "End Address", "Distance (km)", "Duration", "Notes"}

// CSVFilename returns the report filename stamped with the UTC date of now.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("km-report-%s.csv", now.UTC().Format(model.DateLayout))
}

// TripsCSVFilename returns the trip log filename stamped with the UTC date of now.
func TripsCSVFilename(now time.Time) string {
	return fmt.Sprintf("business-trips-%s.csv", now.UTC().Format(model.DateLayout))
}

// WriteCSV writes the trips as a CSV report. Every field is quoted and rows are
// separated by a bare "\n" with no trailing newline.
func WriteCSV(w io.Writer, trips []*model.Trip) error {
	return writeTable(w, csvHeader, trips, func(trip *model.Trip) []string {
		return []string{
			trip.DateString(),
			trip.StartAddress,
			trip.EndAddress,
			formatKm(trip.Km),
			trip.Duration,
			trip.Purpose,
			trip.Notes,
		}
	})
}

// WriteTripsCSV writes the full trip log in the same quoting as WriteCSV.
func WriteTripsCSV(w io.Writer, trips []*model.Trip) error {
	return writeTable(w, tripsHeader, trips, func(trip *model.Trip) []string {
		return []string{
			trip.DateString(),
			trip.Purpose,
			trip.StartAddress,
			trip.EndAddress,
			formatKm(trip.Km),
			trip.Duration,
			trip.Notes,
		}
	})
}

func writeTable(w io.Writer, header []string, trips []*model.Trip, row func(*model.Trip) []string) error {
	if len(trips) == 0 {
		return ErrNoTrips
	}

	var b strings.Builder
	writeRow(&b, header)
	for _, trip := range trips {
		b.WriteByte('\n')
		writeRow(&b, row(trip))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}

func writeRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(field))
	}
}

// quote wraps a field in double quotes, doubling any quotes inside it.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
