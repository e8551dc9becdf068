package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CurrentLocationLabel names a location resolved from device coordinates
// when the caller gives no label.
const CurrentLocationLabel = "Current Location"

// Resolver turns free text or coordinates into a Location. It does not
// cache results; every call is independent.
type Resolver struct {
	geocoder Geocoder
}

// NewResolver creates a Resolver backed by the given geocoder.
func NewResolver(geocoder Geocoder) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// ResolveByText geocodes query and returns its first candidate.
func (r *Resolver) ResolveByText(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	if r.geocoder == nil {
		return Location{}, fmt.Errorf("%w: no geocoder configured", ErrTransport)
	}

	candidates, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		if errors.Is(err, ErrTransport) || errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrNotFound) {
			return Location{}, err
		}
		return Location{}, fmt.Errorf("%w: %s: %w", ErrTransport, r.geocoder.Name(), err)
	}
	if len(candidates) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	first := candidates[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: latitude %q", ErrMalformedPayload, first.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		return Location{}, fmt.Errorf("%w: longitude %q", ErrMalformedPayload, first.Lon)
	}

	loc, err := NewLocation(lat, lon, first.DisplayName)
	if err != nil {
		// Candidate coordinates come from upstream.
		return Location{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, r.geocoder.Name(), err)
	}
	return loc, nil
}

// ResolveByCoordinates builds a Location from device coordinates. It does
// no I/O.
func (r *Resolver) ResolveByCoordinates(lat, lon float64, label string) (Location, error) {
	if strings.TrimSpace(label) == "" {
		label = CurrentLocationLabel
	}
	return NewLocation(lat, lon, label)
}

// NewLocation validates coordinate ranges and returns the Location.
func NewLocation(lat, lon float64, displayName string) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("%w: latitude %v outside [-90,90]", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("%w: longitude %v outside [-180,180]", ErrInvalidCoordinate, lon)
	}
	return Location{Latitude: lat, Longitude: lon, DisplayName: displayName}, nil
}
