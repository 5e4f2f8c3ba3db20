// Package randwalk generates deterministic bounded random walks for the
// cellwatch demo driver.
package randwalk

import (
	"math/rand/v2"
	"sync"
)

// Registry hands out independent PCG streams derived from one master seed.
// Runs started with the same master seed replay identically regardless of
// how many sources they create, as long as creation order is stable.
type Registry struct {
	mu         sync.Mutex
	masterSeed uint64
	nextStream uint64
}

// NewRegistry creates a registry for masterSeed.
func NewRegistry(masterSeed uint64) *Registry {
	return &Registry{masterSeed: masterSeed}
}

// NewSource creates a walk starting at initial with per-step increments in
// [-bound, bound). Each source draws from its own stream (masterSeed, N)
// where N increments per call.
//
// Panics if bound is not positive.
func (r *Registry) NewSource(initial, bound float64) *Source {
	if bound <= 0 {
		panic("randwalk bound must be positive")
	}

	r.mu.Lock()
	stream := r.nextStream
	r.nextStream++
	r.mu.Unlock()

	return &Source{
		rng:   rand.New(rand.NewPCG(r.masterSeed, stream)),
		bound: bound,
		value: initial,
	}
}

// Source is a single random walk. Safe for concurrent use.
type Source struct {
	mu    sync.Mutex
	rng   *rand.Rand
	bound float64
	value float64
}

// Step advances the walk by one increment and returns the new position.
func (s *Source) Step() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value += (s.rng.Float64()*2 - 1) * s.bound
	return s.value
}

// SetBound replaces the step bound for subsequent steps.
// Panics if bound is not positive.
func (s *Source) SetBound(bound float64) {
	if bound <= 0 {
		panic("randwalk bound must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = bound
}
