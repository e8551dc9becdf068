package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS preferences (
	client_id    TEXT PRIMARY KEY,
	latitude     REAL,
	longitude    REAL,
	display_name TEXT,
	language     TEXT NOT NULL DEFAULT '',
	theme        TEXT NOT NULL DEFAULT '',
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS preferences_updated_at ON preferences(updated_at);`

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db    *sql.DB
	clock clock.Clock
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string, clk clock.Clock) (*SQLiteStore, error) {
	if clk == nil {
		clk = clock.NewClock()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, clock: clk}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, prefs Preferences) (Preferences, error) {
	if prefs.ClientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	prefs.UpdatedAt = s.clock.Now().UTC()

	var lat, lon sql.NullFloat64
	var name sql.NullString
	if prefs.LastLocation != nil {
		lat = sql.NullFloat64{Float64: prefs.LastLocation.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: prefs.LastLocation.Longitude, Valid: true}
		name = sql.NullString{String: prefs.LastLocation.DisplayName, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences(client_id, latitude, longitude, display_name, language, theme, updated_at)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(client_id) DO UPDATE SET
			latitude=excluded.latitude,
			longitude=excluded.longitude,
			display_name=excluded.display_name,
			language=excluded.language,
			theme=excluded.theme,
			updated_at=excluded.updated_at`,
		prefs.ClientID, lat, lon, name, prefs.Language, prefs.Theme, prefs.UpdatedAt.UnixNano())
	if err != nil {
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

func (s *SQLiteStore) Get(ctx context.Context, clientID string) (Preferences, error) {
	row := s.db.QueryRowContext(ctx, `SELECT client_id, latitude, longitude, display_name, language, theme, updated_at
		FROM preferences WHERE client_id = ?`, clientID)

	var (
		prefs     Preferences
		lat, lon  sql.NullFloat64
		name      sql.NullString
		updatedAt int64
	)
	if err := row.Scan(&prefs.ClientID, &lat, &lon, &name, &prefs.Language, &prefs.Theme, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}

	if lat.Valid && lon.Valid {
		prefs.LastLocation = &weather.Location{
			Latitude:    lat.Float64,
			Longitude:   lon.Float64,
			DisplayName: name.String,
		}
	}
	prefs.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return prefs, nil
}

// SetLastLocation upserts only the location columns.
func (s *SQLiteStore) SetLastLocation(ctx context.Context, clientID string, loc weather.Location) (Preferences, error) {
	if clientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences(client_id, latitude, longitude, display_name, updated_at)
		VALUES(?,?,?,?,?)
		ON CONFLICT(client_id) DO UPDATE SET
			latitude=excluded.latitude,
			longitude=excluded.longitude,
			display_name=excluded.display_name,
			updated_at=excluded.updated_at`,
		clientID, loc.Latitude, loc.Longitude, loc.DisplayName, s.clock.Now().UTC().UnixNano())
	if err != nil {
		return Preferences{}, fmt.Errorf("set last location: %w", err)
	}
	return s.Get(ctx, clientID)
}

// SetDisplay upserts only the language and theme columns.
func (s *SQLiteStore) SetDisplay(ctx context.Context, clientID, language, theme string) (Preferences, error) {
	if clientID == "" {
		return Preferences{}, ErrInvalidClientID
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences(client_id, language, theme, updated_at)
		VALUES(?,?,?,?)
		ON CONFLICT(client_id) DO UPDATE SET
			language=excluded.language,
			theme=excluded.theme,
			updated_at=excluded.updated_at`,
		clientID, language, theme, s.clock.Now().UTC().UnixNano())
	if err != nil {
		return Preferences{}, fmt.Errorf("set display preferences: %w", err)
	}
	return s.Get(ctx, clientID)
}

func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE updated_at < ?`, cutoff.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
