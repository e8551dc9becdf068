package weather

import (
	"context"
)

// Candidate is one raw geocoding match. Coordinates are kept as the strings
// the geocoder returned.
type Candidate struct {
	Lat         string
	Lon         string
	DisplayName string
}

// Geocoder abstracts a free-text place search (e.g. Nominatim, Google).
// An empty result with a nil error means nothing matched.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}

// Provider abstracts a forecast source (e.g. met.no Locationforecast).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (*Payload, error)
}
