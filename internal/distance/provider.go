// Package distance resolves driving distances between two addresses, falling
// back to an estimate when the maps API is missing or failing.
package distance

import (
	"context"
	"errors"
	"strings"
)

// Sources reported on a Result.
const (
	SourceMaps     = "maps"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// User-facing warnings attached to estimated results.
const (
	WarningNoAPI    = "Using estimated distance - no Google Maps API"
	WarningAPIError = "Used estimated distance - Google Maps API error"
)

var (
	// ErrDistanceUnavailable means the primary provider could not produce a distance.
	ErrDistanceUnavailable = errors.New("distance unavailable")
	// ErrInvalidAddress means an origin or destination is blank.
	ErrInvalidAddress = errors.New("origin and destination are required")
)

// Result is a resolved distance.
type Result struct {
	Km        float64
	Duration  string
	Estimated bool
	Source    string
	// Warning is set when the result is an estimate.
	Warning string
	// Detail carries the classified provider failure, if any.
	Detail string
}

// Provider resolves one origin/destination pair.
type Provider interface {
	Distance(ctx context.Context, origin, destination string) (Result, error)
}

// Normalize collapses runs of whitespace and trims the address.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
