package weather

// SeriesSummary condenses a forecast series for a compact display.
type SeriesSummary struct {
	MinTemperatureC    float64       `json:"minTemperatureC"`
	MaxTemperatureC    float64       `json:"maxTemperatureC"`
	TotalPrecipitation float64       `json:"totalPrecipitationMm"`
	DominantIcon       ConditionIcon `json:"dominantIcon"`
	Hours              int           `json:"hours"`
}

// Summarize computes min/max temperature and total precipitation over the
// series. The dominant icon is the most frequent one; ties go to the icon
// that occurs first.
func Summarize(series ForecastSeries) SeriesSummary {
	if len(series) == 0 {
		return SeriesSummary{}
	}

	summary := SeriesSummary{
		MinTemperatureC: series[0].TemperatureC,
		MaxTemperatureC: series[0].TemperatureC,
		Hours:           len(series),
	}

	iconCounts := make(map[ConditionIcon]int)
	var order []ConditionIcon

	for _, p := range series {
		summary.MinTemperatureC = min(summary.MinTemperatureC, p.TemperatureC)
		summary.MaxTemperatureC = max(summary.MaxTemperatureC, p.TemperatureC)
		summary.TotalPrecipitation += p.PrecipitationMm

		icon := p.Icon()
		if iconCounts[icon] == 0 {
			order = append(order, icon)
		}
		iconCounts[icon]++
	}

	bestCount := 0
	for _, icon := range order {
		if iconCounts[icon] > bestCount {
			bestCount = iconCounts[icon]
			summary.DominantIcon = icon
		}
	}

	return summary
}
