// Package store holds the session's event reports in memory.
package store

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// EventStore is an ordered, prepend-only collection of reports, newest first.
// Reports cannot be removed or modified once inserted.
type EventStore struct {
	mu      sync.RWMutex
	reports []domain.EventReport // index 0 is the newest
}

// New creates an empty store.
func New() *EventStore {
	return &EventStore{}
}

// Seed replaces the store contents. It is meant to be called once, at
// startup, with reports already ordered newest first.
func (s *EventStore) Seed(reports []domain.EventReport) error {
	seeded := make([]domain.EventReport, 0, len(reports))
	for _, r := range reports {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("seed report %q: %w", r.ID, err)
		}
		seeded = append(seeded, r.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = seeded
	return nil
}

// Prepend inserts a report at the head of the store.
func (s *EventStore) Prepend(r domain.EventReport) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("prepend report %q: %w", r.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, domain.EventReport{})
	copy(s.reports[1:], s.reports)
	s.reports[0] = r.Clone()
	return nil
}

// List returns a copy of the reports, newest first.
func (s *EventStore) List() []domain.EventReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EventReport, len(s.reports))
	for i, r := range s.reports {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of stored reports.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// IsEmpty reports whether the store holds no reports.
func (s *EventStore) IsEmpty() bool {
	return s.Len() == 0
}
