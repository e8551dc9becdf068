package store

import (
	"context"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: client ID
	data map[string]Preferences

	clock clock.Clock
}

// NewMemoryStore creates a new MemoryStore. A nil clock uses wall time.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &MemoryStore{
		data:  make(map[string]Preferences),
		clock: clk,
	}
}

// Save replaces the record for prefs.ClientID and stamps UpdatedAt.
func (s *MemoryStore) Save(_ context.Context, prefs Preferences) (Preferences, error) {
	if prefs.ClientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	prefs.UpdatedAt = s.clock.Now().UTC()
	if prefs.LastLocation != nil {
		loc := *prefs.LastLocation
		prefs.LastLocation = &loc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[prefs.ClientID] = prefs
	return prefs, nil
}

// Get returns the record for clientID.
func (s *MemoryStore) Get(_ context.Context, clientID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.data[clientID]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	if prefs.LastLocation != nil {
		loc := *prefs.LastLocation
		prefs.LastLocation = &loc
	}
	return prefs, nil
}

// SetLastLocation replaces the client's last coordinates under the write lock.
func (s *MemoryStore) SetLastLocation(_ context.Context, clientID string, loc weather.Location) (Preferences, error) {
	return s.update(clientID, func(p *Preferences) {
		p.LastLocation = &loc
	})
}

// SetDisplay replaces the client's language and theme under the write lock.
func (s *MemoryStore) SetDisplay(_ context.Context, clientID, language, theme string) (Preferences, error) {
	return s.update(clientID, func(p *Preferences) {
		p.Language = language
		p.Theme = theme
	})
}

func (s *MemoryStore) update(clientID string, apply func(*Preferences)) (Preferences, error) {
	if clientID == "" {
		return Preferences{}, ErrInvalidClientID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.data[clientID]
	prefs.ClientID = clientID
	apply(&prefs)
	prefs.UpdatedAt = s.clock.Now().UTC()
	s.data[clientID] = prefs

	out := prefs
	if out.LastLocation != nil {
		loc := *out.LastLocation
		out.LastLocation = &loc
	}
	return out, nil
}

// Prune removes records last updated before cutoff.
func (s *MemoryStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, prefs := range s.data {
		if prefs.UpdatedAt.Before(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
