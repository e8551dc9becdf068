package weather

import "errors"

var (
	// ErrNotFound is returned when geocoding yields no match for a query.
	ErrNotFound = errors.New("location not found")
	// ErrInvalidCoordinate is returned for latitude/longitude outside range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrTransport is returned when a network call or upstream provider fails.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedPayload is returned when a provider response lacks required fields.
	ErrMalformedPayload = errors.New("malformed payload")
)
