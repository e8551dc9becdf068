package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"code.cloudfoundry.org/clock"
)

// Service runs the lookup pipeline: resolve, fetch, normalize, classify.
// Each lookup is sequential; the service holds no per-lookup state.
type Service struct {
	resolver *Resolver
	provider Provider
	clock    clock.Clock
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(resolver *Resolver, provider Provider, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		provider: provider,
		clock:    clk,
		logger:   logger,
	}
}

// LookupByText geocodes query and fetches its forecast.
func (s *Service) LookupByText(ctx context.Context, query string) (Report, error) {
	loc, err := s.resolver.ResolveByText(ctx, query)
	if err != nil {
		s.logger.Info("resolve by text failed", "query", query, "error", err)
		return Report{}, err
	}
	return s.Forecast(ctx, loc)
}

// LookupByCoordinates fetches the forecast for device coordinates.
func (s *Service) LookupByCoordinates(ctx context.Context, lat, lon float64, label string) (Report, error) {
	loc, err := s.resolver.ResolveByCoordinates(lat, lon, label)
	if err != nil {
		s.logger.Info("resolve by coordinates failed", "lat", lat, "lon", lon, "error", err)
		return Report{}, err
	}
	return s.Forecast(ctx, loc)
}

// Forecast fetches and normalizes the forecast for an already resolved location.
func (s *Service) Forecast(ctx context.Context, loc Location) (Report, error) {
	if s.provider == nil {
		return Report{}, fmt.Errorf("%w: no weather provider configured", ErrTransport)
	}

	start := s.clock.Now()
	payload, err := s.provider.Fetch(ctx, loc)
	if err != nil {
		if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrMalformedPayload) {
			err = fmt.Errorf("%w: %s: %w", ErrTransport, s.provider.Name(), err)
		}
		s.logger.Warn("provider fetch failed", "provider", s.provider.Name(), "location", loc.Key(), "error", err)
		return Report{}, err
	}

	current, series, err := Normalize(payload)
	if err != nil {
		s.logger.Warn("normalize failed", "provider", s.provider.Name(), "location", loc.Key(), "error", err)
		return Report{}, err
	}

	s.logger.Debug("forecast fetched",
		"provider", s.provider.Name(),
		"location", loc.Key(),
		"points", len(series),
		"elapsed", s.clock.Since(start).Round(time.Millisecond),
	)

	var updatedAt *time.Time
	if ts := payload.Properties.Meta.UpdatedAt; !ts.IsZero() {
		ts = ts.UTC()
		updatedAt = &ts
	}

	return Report{
		Location: loc,
		Current:  current,
		Icon:     current.Icon(),
		Forecast: series,
		Summary:  Summarize(series),
		Map: MapView{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Zoom:      DefaultMapZoom,
		},
		Provider:  s.provider.Name(),
		FetchedAt: s.clock.Now().UTC(),
		UpdatedAt: updatedAt,
	}, nil
}
