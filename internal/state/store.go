// internal/state/store.go
package state

import (
	"sync"
	"time"

	"ventgate/internal/metrics"
	"ventgate/internal/registry"
)

// Reading is the last-known value of one register plus its availability.
// A failed poll marks the register unavailable but keeps the stale value.
type Reading struct {
	Value     registry.Value
	Available bool
	UpdatedAt time.Time
}

// Store holds decoded values keyed by logical register name. The polling
// coordinator writes into it incrementally per batch; consumers snapshot.
type Store struct {
	mu          sync.RWMutex
	vals        map[string]Reading
	nominalFlow int // qv max in m3/h, 0 = legacy estimate
}

// NewStore creates an empty store. nominalFlow is the unit model's nominal
// maximum air flow used for flow estimation; pass 0 when unknown.
func NewStore(nominalFlow int) *Store {
	return &Store{
		vals:        make(map[string]Reading),
		nominalFlow: nominalFlow,
	}
}

// Apply records a freshly decoded value.
func (s *Store) Apply(name string, v registry.Value, at time.Time) {
	s.mu.Lock()
	s.vals[name] = Reading{Value: v, Available: true, UpdatedAt: at}
	s.mu.Unlock()

	if v.Type == registry.Bool {
		g := 0.0
		if v.Bool {
			g = 1
		}
		metrics.RegisterValue.WithLabelValues(name).Set(g)
	} else {
		metrics.RegisterValue.WithLabelValues(name).Set(v.Num)
	}
	metrics.RegisterAvailable.WithLabelValues(name).Set(1)
}

// MarkUnavailable flags the named registers as stale for this cycle while
// retaining their last value.
func (s *Store) MarkUnavailable(names []string) {
	s.mu.Lock()
	for _, name := range names {
		r := s.vals[name]
		r.Available = false
		s.vals[name] = r
	}
	s.mu.Unlock()

	for _, name := range names {
		metrics.RegisterAvailable.WithLabelValues(name).Set(0)
	}
}

// MarkAllUnavailable flags every known register, used on connection loss.
func (s *Store) MarkAllUnavailable() {
	s.mu.Lock()
	names := make([]string, 0, len(s.vals))
	for name, r := range s.vals {
		r.Available = false
		s.vals[name] = r
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		metrics.RegisterAvailable.WithLabelValues(name).Set(0)
	}
}

// Get returns the reading for one register.
func (s *Store) Get(name string) (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.vals[name]
	return r, ok
}

// Snapshot copies the current readings.
func (s *Store) Snapshot() map[string]Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Reading, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// flowFactor is the estimated m3/h per fan power percent.
func (s *Store) flowFactor() float64 {
	if s.nominalFlow > 0 {
		return float64(s.nominalFlow) / 100.0
	}
	return 3.0
}
