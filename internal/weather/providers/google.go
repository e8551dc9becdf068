package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
// It yields at most one candidate per query.
type GoogleGeocoder struct {
	name    string
	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder configures the geocoder package with apiKey. The key is
// package-global in the underlying library, so only one Google geocoder
// should be created per process.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name:    "google",
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

type googleResult struct {
	candidates []weather.Candidate
	err        error
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) ([]weather.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrTransport, err)
	}

	// The library has no context support; abandon the call when ctx ends.
	done := make(chan googleResult, 1)
	go func() {
		candidates, err := g.lookup(query)
		done <- googleResult{candidates: candidates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", weather.ErrTransport, ctx.Err())
	case res := <-done:
		return res.candidates, res.err
	}
}

func (g *GoogleGeocoder) lookup(query string) ([]weather.Candidate, error) {
	loc, err := g.geocode(geocoder.Address{City: query})
	if err != nil {
		if common.HasAny(strings.ToLower(err.Error()), "zero_results", "no results") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: google: %v", weather.ErrTransport, err)
	}

	displayName := query
	if addresses, err := g.reverse(loc); err == nil && len(addresses) > 0 {
		if formatted := addresses[0].FormattedAddress; formatted != "" {
			displayName = formatted
		}
	}

	return []weather.Candidate{{
		Lat:         strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		Lon:         strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		DisplayName: displayName,
	}}, nil
}
