package weather

import "fmt"

// Normalize extracts current conditions from the first timeseries entry and a
// forecast series from the first MaxForecastPoints entries.
func Normalize(p *Payload) (WeatherReading, ForecastSeries, error) {
	if p == nil || len(p.Properties.Timeseries) == 0 {
		return WeatherReading{}, nil, fmt.Errorf("%w: empty timeseries", ErrMalformedPayload)
	}

	first := p.Properties.Timeseries[0]
	details := first.instant()
	if details == nil {
		return WeatherReading{}, nil, fmt.Errorf("%w: first entry has no instant details", ErrMalformedPayload)
	}
	if details.AirTemperature == nil {
		return WeatherReading{}, nil, fmt.Errorf("%w: first entry has no air_temperature", ErrMalformedPayload)
	}
	if details.CloudAreaFraction == nil {
		return WeatherReading{}, nil, fmt.Errorf("%w: first entry has no cloud_area_fraction", ErrMalformedPayload)
	}

	current := WeatherReading{
		TemperatureC:  *details.AirTemperature,
		WindSpeedMs:   copyFloat(details.WindSpeed),
		HumidityPct:   copyFloat(details.RelativeHumidity),
		PressureHpa:   copyFloat(details.AirPressureAtSeaLevel),
		RainMm:        clampRain(first.nextHourPrecipitation()),
		CloudinessPct: clampPercent(*details.CloudAreaFraction),
	}

	series, err := buildSeries(p.Properties.Timeseries)
	if err != nil {
		return WeatherReading{}, nil, err
	}
	return current, series, nil
}

func buildSeries(entries []TimeseriesEntry) (ForecastSeries, error) {
	n := min(len(entries), MaxForecastPoints)
	series := make(ForecastSeries, 0, n)

	for i, e := range entries[:n] {
		details := e.instant()
		if details == nil || details.AirTemperature == nil {
			return nil, fmt.Errorf("%w: entry %d has no air_temperature", ErrMalformedPayload, i)
		}
		if i > 0 && !e.Time.After(series[i-1].Timestamp) {
			return nil, fmt.Errorf("%w: entry %d timestamp %s not after %s",
				ErrMalformedPayload, i, e.Time, series[i-1].Timestamp)
		}

		var cloud float64
		if details.CloudAreaFraction != nil {
			cloud = *details.CloudAreaFraction
		}

		series = append(series, ForecastPoint{
			Timestamp:       e.Time.UTC(),
			TemperatureC:    *details.AirTemperature,
			PrecipitationMm: clampRain(e.nextHourPrecipitation()),
			CloudinessPct:   clampPercent(cloud),
		})
	}
	return series, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func clampRain(v float64) float64 {
	return max(v, 0)
}

func clampPercent(v float64) float64 {
	return min(max(v, 0), 100)
}
