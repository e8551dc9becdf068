package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultMetNoBaseURL is the met.no Locationforecast compact endpoint.
const DefaultMetNoBaseURL = "https://api.met.no/weatherapi/locationforecast/2.0/compact"

// MetNoProvider implements the weather.Provider interface for met.no.
type MetNoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewMetNoProvider(cfg HTTPClientConfig, baseURL string) *MetNoProvider {
	if baseURL == "" {
		baseURL = DefaultMetNoBaseURL
	}
	return &MetNoProvider{
		name:    "metno",
		baseURL: baseURL,
		httpCfg: cfg,
		circuit: newBreaker("metno"),
	}
}

func (p *MetNoProvider) Name() string {
	return p.name
}

func (p *MetNoProvider) Fetch(ctx context.Context, loc weather.Location) (*weather.Payload, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("altitude", "1")
		values.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return weather.DecodePayload(resp.Body)
}
