package weather

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

var baseTime = time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

// buildPayload renders a met.no-shaped document with n hourly entries.
// Entry i has air_temperature i, cloud_area_fraction 10*i (capped at 100)
// and, when withNextHour is set, precipitation 0.5*i.
func buildPayload(n int, withNextHour bool) string {
	entries := make([]string, 0, n)
	for i := 0; i < n; i++ {
		next := ""
		if withNextHour {
			next = fmt.Sprintf(`,"next_1_hours":{"summary":{"symbol_code":"rain"},"details":{"precipitation_amount":%v}}`, 0.5*float64(i))
		}
		entries = append(entries, fmt.Sprintf(
			`{"time":%q,"data":{"instant":{"details":{"air_temperature":%d,"air_pressure_at_sea_level":1012.5,"cloud_area_fraction":%d,"relative_humidity":81.2,"wind_speed":3.4}}%s}}`,
			baseTime.Add(time.Duration(i)*time.Hour).Format(time.RFC3339), i, min(10*i, 100), next,
		))
	}
	return `{"type":"Feature","properties":{"meta":{"updated_at":"2024-11-05T11:32:10Z"},"timeseries":[` +
		strings.Join(entries, ",") + `]}}`
}

func mustDecode(t *testing.T, doc string) *Payload {
	t.Helper()
	p, err := DecodePayload(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return p
}

func TestNormalizeCurrentConditions(t *testing.T) {
	doc := `{"properties":{"timeseries":[
		{"time":"2024-11-05T12:00:00Z","data":{
			"instant":{"details":{"air_temperature":7.3,"air_pressure_at_sea_level":1008.1,"cloud_area_fraction":92.5,"relative_humidity":88,"wind_speed":5.1}},
			"next_1_hours":{"summary":{"symbol_code":"rain"},"details":{"precipitation_amount":1.2}}}}
	]}}`

	current, series, err := Normalize(mustDecode(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if current.TemperatureC != 7.3 {
		t.Fatalf("expected temperature 7.3, got %v", current.TemperatureC)
	}
	if current.RainMm != 1.2 {
		t.Fatalf("expected rain 1.2, got %v", current.RainMm)
	}
	if current.CloudinessPct != 92.5 {
		t.Fatalf("expected cloudiness 92.5, got %v", current.CloudinessPct)
	}
	if current.WindSpeedMs == nil || *current.WindSpeedMs != 5.1 {
		t.Fatalf("expected wind speed 5.1, got %v", current.WindSpeedMs)
	}
	if current.HumidityPct == nil || *current.HumidityPct != 88 {
		t.Fatalf("expected humidity 88, got %v", current.HumidityPct)
	}
	if current.PressureHpa == nil || *current.PressureHpa != 1008.1 {
		t.Fatalf("expected pressure 1008.1, got %v", current.PressureHpa)
	}
	if current.Icon() != IconRainy {
		t.Fatalf("expected icon %q, got %q", IconRainy, current.Icon())
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 forecast point, got %d", len(series))
	}
}

func TestNormalizeWithoutNextHourDefaultsRainToZero(t *testing.T) {
	current, series, err := Normalize(mustDecode(t, buildPayload(3, false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.RainMm != 0 {
		t.Fatalf("expected rain 0, got %v", current.RainMm)
	}
	for i, p := range series {
		if p.PrecipitationMm != 0 {
			t.Fatalf("point %d: expected precipitation 0, got %v", i, p.PrecipitationMm)
		}
	}
}

func TestNormalizeOptionalFieldsAbsent(t *testing.T) {
	doc := `{"properties":{"timeseries":[
		{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":-2,"cloud_area_fraction":0}}}}
	]}}`

	current, _, err := Normalize(mustDecode(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.WindSpeedMs != nil || current.HumidityPct != nil || current.PressureHpa != nil {
		t.Fatalf("expected optional fields to be absent, got %+v", current)
	}
	if current.Icon() != IconACUnit {
		t.Fatalf("expected icon %q, got %q", IconACUnit, current.Icon())
	}
}

func TestNormalizeSeriesLength(t *testing.T) {
	for _, n := range []int{1, 5, 23, 24, 25, 60} {
		t.Run(fmt.Sprintf("%d entries", n), func(t *testing.T) {
			_, series, err := Normalize(mustDecode(t, buildPayload(n, true)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := min(n, MaxForecastPoints)
			if len(series) != want {
				t.Fatalf("expected %d points, got %d", want, len(series))
			}
			for i := 1; i < len(series); i++ {
				if !series[i].Timestamp.After(series[i-1].Timestamp) {
					t.Fatalf("timestamps not strictly increasing at %d: %v then %v", i, series[i-1].Timestamp, series[i].Timestamp)
				}
			}

			last := series[len(series)-1]
			if last.TemperatureC != float64(want-1) {
				t.Fatalf("expected series to be a prefix, last temperature %v", last.TemperatureC)
			}
			if last.PrecipitationMm != 0.5*float64(want-1) {
				t.Fatalf("expected last precipitation %v, got %v", 0.5*float64(want-1), last.PrecipitationMm)
			}
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty timeseries", `{"properties":{"timeseries":[]}}`},
		{"missing properties", `{}`},
		{"no instant block", `{"properties":{"timeseries":[{"time":"2024-11-05T12:00:00Z","data":{}}]}}`},
		{"no temperature", `{"properties":{"timeseries":[{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"cloud_area_fraction":10}}}}]}}`},
		{"no cloudiness", `{"properties":{"timeseries":[{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":10}}}}]}}`},
		{"later entry without temperature", `{"properties":{"timeseries":[
			{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":10,"cloud_area_fraction":10}}}},
			{"time":"2024-11-05T13:00:00Z","data":{"instant":{"details":{}}}}]}}`},
		{"timestamps out of order", `{"properties":{"timeseries":[
			{"time":"2024-11-05T13:00:00Z","data":{"instant":{"details":{"air_temperature":10,"cloud_area_fraction":10}}}},
			{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":11,"cloud_area_fraction":10}}}}]}}`},
		{"duplicate timestamps", `{"properties":{"timeseries":[
			{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":10,"cloud_area_fraction":10}}}},
			{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":11,"cloud_area_fraction":10}}}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(mustDecode(t, tt.doc))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}

	if _, _, err := Normalize(nil); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload for nil payload, got %v", err)
	}
}

func TestNormalizeMissingNextHourInLaterEntries(t *testing.T) {
	doc := `{"properties":{"timeseries":[
		{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":10,"cloud_area_fraction":10}},"next_1_hours":{"details":{"precipitation_amount":0.4}}}},
		{"time":"2024-11-05T13:00:00Z","data":{"instant":{"details":{"air_temperature":11}}}}
	]}}`

	_, series, err := Normalize(mustDecode(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].PrecipitationMm != 0.4 {
		t.Fatalf("expected precipitation 0.4, got %v", series[0].PrecipitationMm)
	}
	if series[1].PrecipitationMm != 0 || series[1].CloudinessPct != 0 {
		t.Fatalf("expected zero precipitation and cloudiness, got %+v", series[1])
	}
}

func TestNormalizeClampsOutOfRangeValues(t *testing.T) {
	doc := `{"properties":{"timeseries":[
		{"time":"2024-11-05T12:00:00Z","data":{"instant":{"details":{"air_temperature":10,"cloud_area_fraction":100.4}},"next_1_hours":{"details":{"precipitation_amount":-0.1}}}}
	]}}`

	current, _, err := Normalize(mustDecode(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.CloudinessPct != 100 {
		t.Fatalf("expected cloudiness clamped to 100, got %v", current.CloudinessPct)
	}
	if current.RainMm != 0 {
		t.Fatalf("expected rain clamped to 0, got %v", current.RainMm)
	}
}

func TestDecodePayloadInvalidJSON(t *testing.T) {
	_, err := DecodePayload(strings.NewReader(`{"properties":`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
