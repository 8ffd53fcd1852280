package distance

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

// DefaultFallbackDelay simulates the latency of a real lookup.
const DefaultFallbackDelay = time.Second

const (
	fallbackMinKm = 5.0
	fallbackSpan  = 50.0
	// fallbackMaxKm keeps rounded estimates inside [5, 55).
	fallbackMaxKm = 54.9
)

// FallbackEstimator produces plausible random distances when the maps API
// cannot be used. Every result is flagged Estimated.
type FallbackEstimator struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewFallbackEstimator returns an estimator that waits delay before answering.
// A nil src seeds from the clock.
func NewFallbackEstimator(delay time.Duration, src rand.Source) *FallbackEstimator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &FallbackEstimator{delay: delay, rnd: rand.New(src)}
}

// Distance ignores the addresses and returns an estimate.
func (f *FallbackEstimator) Distance(ctx context.Context, origin, destination string) (Result, error) {
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	f.mu.Lock()
	r := f.rnd.Float64()
	f.mu.Unlock()

	km := math.Min(model.RoundKm(r*fallbackSpan+fallbackMinKm), fallbackMaxKm)

	return Result{
		Km:        km,
		Duration:  fmt.Sprintf("%d mins", int(math.Round(km*2))),
		Estimated: true,
		Source:    SourceFallback,
	}, nil
}
