package weather

// Classify maps a temperature/rain/cloudiness triple to an icon. Rules are
// evaluated in order and the first match wins; all comparisons are strict.
func Classify(temperatureC, rainMm, cloudinessPct float64) ConditionIcon {
	switch {
	case rainMm > 4:
		return IconThunderstorm
	case rainMm > 0 && cloudinessPct > 80:
		return IconRainy
	case rainMm > 0:
		return IconGrain
	case cloudinessPct > 80:
		return IconCloud
	case cloudinessPct > 20:
		return IconPartlyCloudyDay
	case temperatureC < 0:
		return IconACUnit
	case temperatureC > 25:
		return IconWbSunny
	default:
		return IconLightMode
	}
}
