package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"fmt"
	"sync"
)

type MockPair struct {
	From, To domain.Coordinates
	Km       float64
}

// MockDistanceProvider serves fixed distances and counts lookups.
// Pairs are symmetric.
type MockDistanceProvider struct {
	m map[[2]domain.Coordinates]ports.DistanceResult

	mu    sync.Mutex
	calls int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[[2]domain.Coordinates]ports.DistanceResult, 2*len(pairs))
	for _, p := range pairs {
		m[[2]domain.Coordinates{p.From, p.To}] = ports.DistanceResult{DistanceKm: p.Km}
		m[[2]domain.Coordinates{p.To, p.From}] = ports.DistanceResult{DistanceKm: p.Km}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	r, ok := p.m[[2]domain.Coordinates{origin, destination}]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %v -> %v", origin, destination)
	}

	return r, nil
}

// Calls reports how many lookups reached the mock.
func (p *MockDistanceProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
