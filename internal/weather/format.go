package weather

import (
	"strconv"
	"strings"
)

// FormatPeriod renders one forecast period as a block of text ending in "---".
func FormatPeriod(p Period) string {
	temperature := "Unknown"
	if p.Temperature != nil {
		temperature = strconv.FormatFloat(*p.Temperature, 'f', -1, 64)
	}

	return strings.Join([]string{
		orDefault(p.Name, "Unknown") + ":",
		"Temperature: " + temperature + "°" + orDefault(p.TemperatureUnit, "F"),
		"Wind: " + orDefault(p.WindSpeed, "Unknown") + " " + p.WindDirection,
		orDefault(p.ShortForecast, "No forecast available"),
		"---",
	}, "\n")
}

// FormatForecast renders the forecast for the given coordinates, as typed
// by the caller.
func FormatForecast(latitude, longitude string, periods []Period) string {
	blocks := make([]string, len(periods))
	for i, p := range periods {
		blocks[i] = FormatPeriod(p)
	}

	return "Forecast for " + latitude + ", " + longitude + ":\n\n" + strings.Join(blocks, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
