// Package model defines domain entities for the application.
package model

import (
	"math"
	"time"
)

// DateLayout is the calendar date format used on the wire and in exports.
const DateLayout = "2006-01-02"

// Trip is a single recorded journey between two addresses.
// Trips are created once and never updated in place.
type Trip struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Date         time.Time `json:"date"`
	StartAddress string    `json:"start_address"`
	EndAddress   string    `json:"end_address"`
	Km           float64   `json:"km"`
	Duration     string    `json:"duration,omitempty"`
	Purpose      string    `json:"purpose,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Estimated    bool      `json:"estimated"`
	CreatedAt    time.Time `json:"created_at"`
}

// DateString returns the trip date formatted as YYYY-MM-DD.
func (t *Trip) DateString() string {
	return t.Date.Format(DateLayout)
}

// CalendarDate strips the time of day, keeping the date in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// RoundKm rounds a distance to one decimal place.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
