package weather

// MapWeatherCode maps WMO weather codes (as used by Open-Meteo) into the
// closed Condition enum. Bucket boundaries:
// 0-1 clear, 2-3 cloudy, 45-48 fog -> cloudy, 51-67 and 80-82 rain,
// 71-77/85/86 snow, 95-99 thunderstorm -> rain.
func MapWeatherCode(code int, windKmh float64) Condition {
	var cond Condition
	switch {
	case code >= 0 && code <= 1:
		cond = ConditionClear
	case code >= 2 && code <= 3:
		cond = ConditionCloudy
	case code >= 45 && code <= 48:
		cond = ConditionCloudy
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		cond = ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		cond = ConditionSnow
	case code >= 95 && code <= 99:
		cond = ConditionRain
	default:
		cond = ConditionCloudy
	}

	// Strong wind dominates an otherwise dry sky.
	if (cond == ConditionClear || cond == ConditionCloudy) && windKmh >= 38 {
		return ConditionWind
	}
	return cond
}

// DescribeWeatherCode returns a short human-readable description for a WMO
// weather code, used when the provider gives no free-text summary.
func DescribeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code == 1:
		return "Mainly clear"
	case code == 2:
		return "Partly cloudy"
	case code == 3:
		return "Overcast"
	case code >= 45 && code <= 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return "Changeable"
	}
}
