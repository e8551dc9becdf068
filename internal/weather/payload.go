package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Payload is the met.no Locationforecast 2.0 response, reduced to the fields
// the normalizer reads. Pointers distinguish absent values from zero.
type Payload struct {
	Properties struct {
		Meta struct {
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"meta"`
		Timeseries []TimeseriesEntry `json:"timeseries"`
	} `json:"properties"`
}

// TimeseriesEntry is one timestamped observation/forecast.
type TimeseriesEntry struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant    *Instant   `json:"instant,omitempty"`
		Next1Hours *NextHours `json:"next_1_hours,omitempty"`
	} `json:"data"`
}

// Instant wraps the instantaneous readings block.
type Instant struct {
	Details InstantDetails `json:"details"`
}

// InstantDetails are the instantaneous readings at an entry's timestamp.
type InstantDetails struct {
	AirTemperature        *float64 `json:"air_temperature"`
	AirPressureAtSeaLevel *float64 `json:"air_pressure_at_sea_level"`
	CloudAreaFraction     *float64 `json:"cloud_area_fraction"`
	RelativeHumidity      *float64 `json:"relative_humidity"`
	WindSpeed             *float64 `json:"wind_speed"`
}

// NextHours is the short-range precipitation forecast block.
type NextHours struct {
	Details struct {
		PrecipitationAmount *float64 `json:"precipitation_amount"`
	} `json:"details"`
}

// DecodePayload reads a JSON payload. Decoding failures are reported as
// ErrMalformedPayload.
func DecodePayload(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}

func (e TimeseriesEntry) instant() *InstantDetails {
	if e.Data.Instant == nil {
		return nil
	}
	return &e.Data.Instant.Details
}

func (e TimeseriesEntry) nextHourPrecipitation() float64 {
	if e.Data.Next1Hours == nil || e.Data.Next1Hours.Details.PrecipitationAmount == nil {
		return 0
	}
	return *e.Data.Next1Hours.Details.PrecipitationAmount
}
