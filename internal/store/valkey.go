package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/valkey-io/valkey-go"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Hash fields of a preferences record.
const (
	fieldLanguage  = "language"
	fieldTheme     = "theme"
	fieldLocation  = "location"
	fieldUpdatedAt = "updated_at"
)

// ValkeyStore persists preferences as one Valkey hash per client. Records
// expire through key TTLs, so Prune has nothing to do.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	clock  clock.Clock
}

type hashField struct {
	name  string
	value string
}

// NewValkeyStore constructs a store backed by Valkey. A zero ttl keeps
// records forever; a positive ttl is rounded up to at least one second.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration, clk clock.Clock) *ValkeyStore {
	if prefix == "" {
		prefix = "weather-lookup"
	}
	if clk == nil {
		clk = clock.NewClock()
	}
	if ttl > 0 && ttl < time.Second {
		ttl = time.Second
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl, clock: clk}
}

// Save overwrites every field of the record.
func (s *ValkeyStore) Save(ctx context.Context, prefs Preferences) (Preferences, error) {
	if prefs.ClientID == "" {
		return Preferences{}, ErrInvalidClientID
	}

	location := ""
	if prefs.LastLocation != nil {
		raw, err := json.Marshal(prefs.LastLocation)
		if err != nil {
			return Preferences{}, err
		}
		location = string(raw)
	}

	now := s.clock.Now().UTC()
	err := s.write(ctx, prefs.ClientID, now,
		hashField{fieldLanguage, prefs.Language},
		hashField{fieldTheme, prefs.Theme},
		hashField{fieldLocation, location},
	)
	if err != nil {
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	prefs.UpdatedAt = now
	return prefs, nil
}

func (s *ValkeyStore) Get(ctx context.Context, clientID string) (Preferences, error) {
	values, err := s.client.Do(ctx, s.client.B().Hgetall().Key(s.prefsKey(clientID)).Build()).AsStrMap()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	if len(values) == 0 {
		return Preferences{}, ErrNotFound
	}

	prefs := Preferences{
		ClientID: clientID,
		Language: values[fieldLanguage],
		Theme:    values[fieldTheme],
	}
	if raw := values[fieldLocation]; raw != "" {
		var loc weather.Location
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return Preferences{}, fmt.Errorf("decode last location: %w", err)
		}
		prefs.LastLocation = &loc
	}
	if raw := values[fieldUpdatedAt]; raw != "" {
		updatedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Preferences{}, fmt.Errorf("decode updated_at: %w", err)
		}
		prefs.UpdatedAt = updatedAt
	}
	return prefs, nil
}

// SetLastLocation writes only the location field.
func (s *ValkeyStore) SetLastLocation(ctx context.Context, clientID string, loc weather.Location) (Preferences, error) {
	if clientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	raw, err := json.Marshal(loc)
	if err != nil {
		return Preferences{}, err
	}
	if err := s.write(ctx, clientID, s.clock.Now().UTC(), hashField{fieldLocation, string(raw)}); err != nil {
		return Preferences{}, fmt.Errorf("set last location: %w", err)
	}
	return s.Get(ctx, clientID)
}

// SetDisplay writes only the language and theme fields.
func (s *ValkeyStore) SetDisplay(ctx context.Context, clientID, language, theme string) (Preferences, error) {
	if clientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	err := s.write(ctx, clientID, s.clock.Now().UTC(),
		hashField{fieldLanguage, language},
		hashField{fieldTheme, theme},
	)
	if err != nil {
		return Preferences{}, fmt.Errorf("set display preferences: %w", err)
	}
	return s.Get(ctx, clientID)
}

// write sets fields plus updated_at with a single HSET and refreshes the
// key's TTL in the same round trip.
func (s *ValkeyStore) write(ctx context.Context, clientID string, now time.Time, fields ...hashField) error {
	key := s.prefsKey(clientID)

	hset := s.client.B().Hset().Key(key).FieldValue()
	for _, f := range fields {
		hset = hset.FieldValue(f.name, f.value)
	}
	hset = hset.FieldValue(fieldUpdatedAt, now.Format(time.RFC3339Nano))

	cmds := valkey.Commands{hset.Build()}
	if s.ttl > 0 {
		cmds = append(cmds, s.client.B().Expire().Key(key).Seconds(int64(s.ttl/time.Second)).Build())
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) Prune(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

func (s *ValkeyStore) prefsKey(clientID string) string {
	return fmt.Sprintf("%s:prefs:%s", s.prefix, clientID)
}

var _ Store = (*ValkeyStore)(nil)
