package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Line is one labelled value of a summary.
type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummaryView is a localized, display-ready rendition of a report.
type SummaryView struct {
	Title    string                `json:"title"`
	Location string                `json:"location"`
	Icon     weather.ConditionIcon `json:"icon"`
	Lines    []Line                `json:"lines"`
	Forecast string                `json:"forecastTitle"`
}

// Summary renders the current conditions of report in lang. Unreported
// optional values show the "not available" placeholder, never zero.
func Summary(lang string, report weather.Report) SummaryView {
	lang = NormalizeLanguage(lang)
	na := Message(lang, KeyNotAvailable)
	cur := report.Current

	return SummaryView{
		Title:    Message(lang, KeyTitle),
		Location: report.Location.DisplayName,
		Icon:     report.Icon,
		Lines: []Line{
			{Label: Message(lang, KeyTemperature), Value: formatNumber(cur.TemperatureC) + "°C"},
			{Label: Message(lang, KeyWind), Value: formatOptional(cur.WindSpeedMs, "m/s", na)},
			{Label: Message(lang, KeyHumidity), Value: formatOptional(cur.HumidityPct, "%", na)},
			{Label: Message(lang, KeyPressure), Value: formatOptional(cur.PressureHpa, "hPa", na)},
			{Label: Message(lang, KeyRain), Value: formatNumber(cur.RainMm) + "mm"},
			{Label: Message(lang, KeyCloudiness), Value: formatNumber(cur.CloudinessPct) + "%"},
		},
		Forecast: Message(lang, KeyForecast),
	}
}

// String renders the view as plain text, one line per value.
func (v SummaryView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", v.Location, v.Icon)
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "%s: %s\n", l.Label, l.Value)
	}
	return b.String()
}

func formatOptional(v *float64, unit, placeholder string) string {
	if v == nil {
		return placeholder
	}
	if unit == "%" {
		return formatNumber(*v) + unit
	}
	return formatNumber(*v) + " " + unit
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
