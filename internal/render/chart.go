package render

import (
	"errors"
	"io"

	"github.com/fogleman/gg"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	DefaultChartWidth  = 800
	DefaultChartHeight = 240

	chartPadding = 16.0
)

// ErrEmptySeries is returned when there is nothing to chart.
var ErrEmptySeries = errors.New("empty forecast series")

// Chart draws the forecast as precipitation bars with a temperature line on
// top. Non-positive sizes use the defaults.
func Chart(series weather.ForecastSeries, width, height int) (*gg.Context, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	plotW := float64(width) - 2*chartPadding
	plotH := float64(height) - 2*chartPadding
	step := plotW / float64(len(series))

	minT, maxT := series[0].TemperatureC, series[0].TemperatureC
	maxP := 0.0
	for _, p := range series {
		minT = min(minT, p.TemperatureC)
		maxT = max(maxT, p.TemperatureC)
		maxP = max(maxP, p.PrecipitationMm)
	}
	if maxT-minT < 1 {
		maxT = minT + 1
	}

	yTemp := func(t float64) float64 {
		return chartPadding + plotH - (t-minT)/(maxT-minT)*plotH
	}

	// precipitation bars, scaled to the wettest hour
	if maxP > 0 {
		dc.SetHexColor("#4A90D9")
		for i, p := range series {
			h := p.PrecipitationMm / maxP * plotH * 0.5
			x := chartPadding + float64(i)*step
			dc.DrawRectangle(x+step*0.15, chartPadding+plotH-h, step*0.7, h)
		}
		dc.Fill()
	}

	if minT < 0 && maxT > 0 {
		dc.SetHexColor("#BBBBBB")
		dc.SetLineWidth(1)
		dc.DrawLine(chartPadding, yTemp(0), chartPadding+plotW, yTemp(0))
		dc.Stroke()
	}

	dc.SetHexColor("#D0021B")
	dc.SetLineWidth(2)
	for i, p := range series {
		x := chartPadding + (float64(i)+0.5)*step
		if i == 0 {
			dc.MoveTo(x, yTemp(p.TemperatureC))
			continue
		}
		dc.LineTo(x, yTemp(p.TemperatureC))
	}
	dc.Stroke()

	for i, p := range series {
		dc.DrawCircle(chartPadding+(float64(i)+0.5)*step, yTemp(p.TemperatureC), 2.5)
	}
	dc.Fill()

	return dc, nil
}

// WriteChartPNG renders the chart and encodes it as PNG to w.
func WriteChartPNG(w io.Writer, series weather.ForecastSeries, width, height int) error {
	dc, err := Chart(series, width, height)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}
