package store

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrNotFound is returned when no preferences exist for a client.
	ErrNotFound = errors.New("no preferences for client")
	// ErrInvalidClientID is returned for an empty client ID.
	ErrInvalidClientID = errors.New("invalid client id")
)

// Preferences is the per-client record: last known coordinates plus display
// preferences.
type Preferences struct {
	ClientID     string            `json:"clientId"`
	LastLocation *weather.Location `json:"lastLocation,omitempty"`
	Language     string            `json:"language"`
	Theme        string            `json:"theme"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Store persists Preferences keyed by client ID. SetLastLocation and
// SetDisplay write only their own fields, creating the record if needed, so
// a lookup and a preferences update for the same client never revert each
// other.
type Store interface {
	Save(ctx context.Context, prefs Preferences) (Preferences, error)
	Get(ctx context.Context, clientID string) (Preferences, error)
	SetLastLocation(ctx context.Context, clientID string, loc weather.Location) (Preferences, error)
	SetDisplay(ctx context.Context, clientID, language, theme string) (Preferences, error)
	// Prune removes records last updated before cutoff and reports how many
	// were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// RememberLocation stores loc as the client's last coordinates, keeping the
// rest of the record.
func RememberLocation(ctx context.Context, s Store, clientID string, loc weather.Location) error {
	_, err := s.SetLastLocation(ctx, clientID, loc)
	return err
}
