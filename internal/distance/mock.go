package distance

import (
	"context"
	"fmt"
	"sync"
)

// MockPair is a canned answer for MockProvider.
type MockPair struct {
	From, To string
	Km       float64
	Duration string
}

// MockProvider answers from a fixed table. Unknown pairs fail with
// ErrDistanceUnavailable. It counts calls for assertions.
type MockProvider struct {
	m map[string]Result

	mu    sync.Mutex
	calls int
}

// NewMockProvider builds a MockProvider from pairs.
func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]Result, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = Result{Km: p.Km, Duration: p.Duration, Source: SourceMaps}
	}
	return &MockProvider{m: m}
}

func (p *MockProvider) Distance(ctx context.Context, origin, destination string) (Result, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return Result{}, fmt.Errorf("%w: missing pair %q -> %q", ErrDistanceUnavailable, origin, destination)
	}
	return r, nil
}

// Calls returns how many lookups were made.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
