package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultOpenMeteoBaseURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

const openMeteoHourly = "temperature_2m,relative_humidity_2m,precipitation,cloud_cover,pressure_msl,wind_speed_10m"

// openMeteoHours starts the window at the current hour. The extra hour
// supplies the next-hour precipitation of the last forecast point.
const openMeteoHours = weather.MaxForecastPoints + 1

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Its hourly response is translated into the met.no payload shape so the
// normalizer treats both sources alike.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(cfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoResponse struct {
	Hourly struct {
		Time             []int64    `json:"time"`
		Temperature      []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
		Precipitation    []*float64 `json:"precipitation"`
		CloudCover       []*float64 `json:"cloud_cover"`
		PressureMSL      []*float64 `json:"pressure_msl"`
		WindSpeed        []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (*weather.Payload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
		values.Set("hourly", openMeteoHourly)
		values.Set("wind_speed_unit", "ms")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "GMT")
		values.Set("forecast_hours", strconv.Itoa(openMeteoHours))
		values.Set("past_hours", "0")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode openmeteo: %v", weather.ErrMalformedPayload, err)
	}
	return payload.toPayload(), nil
}

// toPayload converts the column-oriented hourly block into timeseries
// entries. Open-Meteo reports precipitation summed over the preceding hour,
// so entry i takes its next-hour amount from column i+1.
func (r openMeteoResponse) toPayload() *weather.Payload {
	h := r.Hourly
	out := &weather.Payload{}
	out.Properties.Timeseries = make([]weather.TimeseriesEntry, 0, len(h.Time))

	for i, ts := range h.Time {
		var entry weather.TimeseriesEntry
		entry.Time = time.Unix(ts, 0).UTC()
		entry.Data.Instant = &weather.Instant{Details: weather.InstantDetails{
			AirTemperature:        column(h.Temperature, i),
			AirPressureAtSeaLevel: column(h.PressureMSL, i),
			CloudAreaFraction:     column(h.CloudCover, i),
			RelativeHumidity:      column(h.RelativeHumidity, i),
			WindSpeed:             column(h.WindSpeed, i),
		}}
		if rain := column(h.Precipitation, i+1); rain != nil {
			next := &weather.NextHours{}
			next.Details.PrecipitationAmount = rain
			entry.Data.Next1Hours = next
		}
		out.Properties.Timeseries = append(out.Properties.Timeseries, entry)
	}
	return out
}

func column(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}
