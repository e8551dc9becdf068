package weather

import (
	"strconv"
	"time"
)

// ConditionIcon is the display icon name derived from a reading.
type ConditionIcon string

const (
	IconThunderstorm    ConditionIcon = "thunderstorm"
	IconRainy           ConditionIcon = "rainy"
	IconGrain           ConditionIcon = "grain"
	IconCloud           ConditionIcon = "cloud"
	IconPartlyCloudyDay ConditionIcon = "partly_cloudy_day"
	IconACUnit          ConditionIcon = "ac_unit"
	IconWbSunny         ConditionIcon = "wb_sunny"
	IconLightMode       ConditionIcon = "light_mode"
)

// MaxForecastPoints bounds the length of a ForecastSeries.
const MaxForecastPoints = 24

// DefaultMapZoom is the zoom level used when centring a map on a result.
const DefaultMapZoom = 13

// Location is a resolved place. Construct it through the Resolver so the
// coordinate ranges are checked.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

// Key returns a canonical string key for this location's coordinates.
func (l Location) Key() string {
	return strconv.FormatFloat(l.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', 4, 64)
}

// WeatherReading holds current conditions. Nil optional fields were not
// reported by the provider and must not be shown as zero.
type WeatherReading struct {
	TemperatureC  float64  `json:"temperatureC"`
	WindSpeedMs   *float64 `json:"windSpeedMs,omitempty"`
	HumidityPct   *float64 `json:"humidityPct,omitempty"`
	PressureHpa   *float64 `json:"pressureHpa,omitempty"`
	RainMm        float64  `json:"rainMm"`
	CloudinessPct float64  `json:"cloudinessPct"`
}

// Icon classifies the reading.
func (r WeatherReading) Icon() ConditionIcon {
	return Classify(r.TemperatureC, r.RainMm, r.CloudinessPct)
}

// ForecastPoint is one hour of the short-range forecast.
type ForecastPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	TemperatureC    float64   `json:"temperatureC"`
	PrecipitationMm float64   `json:"precipitationMm"`
	CloudinessPct   float64   `json:"cloudinessPct"`
}

// Icon classifies the forecast point.
func (p ForecastPoint) Icon() ConditionIcon {
	return Classify(p.TemperatureC, p.PrecipitationMm, p.CloudinessPct)
}

// ForecastSeries is ordered by ascending Timestamp and holds at most
// MaxForecastPoints entries.
type ForecastSeries []ForecastPoint

// MapView is where a map showing the result should be centred.
type MapView struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
}

// Report is the outcome of one lookup, ready for rendering.
type Report struct {
	Location  Location       `json:"location"`
	Current   WeatherReading `json:"current"`
	Icon      ConditionIcon  `json:"icon"`
	Forecast  ForecastSeries `json:"forecast"`
	Summary   SeriesSummary  `json:"summary"`
	Map       MapView        `json:"map"`
	Provider  string         `json:"provider"`
	FetchedAt time.Time      `json:"fetchedAt"`
	// UpdatedAt is when the provider generated the forecast, if it says.
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}
