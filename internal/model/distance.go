package model

import (
	"strconv"
)

// CachedDistance is the Redis hash representation of a resolved distance.
type CachedDistance struct {
	Km       string
	Duration string
}

// NewCachedDistance converts a resolved distance to its cached form.
func NewCachedDistance(km float64, duration string) *CachedDistance {
	return &CachedDistance{
		Km:       strconv.FormatFloat(km, 'f', 1, 64),
		Duration: duration,
	}
}

// KmValue parses the cached kilometer value.
func (c *CachedDistance) KmValue() (float64, error) {
	return strconv.ParseFloat(c.Km, 64)
}
