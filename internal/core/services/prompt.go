package services

import (
	"fmt"
	"strings"

	"github.com/climascope/climascope/internal/core/domain"
)

// BuildAdvicePrompt summarizes an aggregate for the advisor service. The
// summary mirrors the figures shown on the dashboard so the advice refers
// to the same numbers the user sees; missing dimensions contribute zeros.
func BuildAdvicePrompt(aggregate *domain.WeatherAggregate) string {
	temp := aggregate.Temperature
	if temp == nil {
		temp = &domain.TemperatureStats{}
	}

	humidity := aggregate.Humidity
	if humidity == nil {
		humidity = &domain.HumidityStats{}
	}

	precip := aggregate.Precipitation
	if precip == nil {
		precip = &domain.PrecipitationStats{}
	}

	wind := aggregate.WindSpeed
	if wind == nil {
		wind = &domain.WindSpeedStats{}
	}

	snowPrecip := aggregate.SnowPrecipitation
	if snowPrecip == nil {
		snowPrecip = &domain.SnowPrecipStats{}
	}

	snowDepth := aggregate.SnowDepth
	if snowDepth == nil {
		snowDepth = &domain.SnowDepthStats{}
	}

	var b strings.Builder

	b.WriteString("You are a helpful weather advisor. Based on the data below, provide a short, ")
	b.WriteString("friendly activity recommendation, a \"Planning Tip:\" with advice on what to wear ")
	b.WriteString("or take, and, only if the weather is potentially dangerous, a \"Danger Alert:\" ")
	b.WriteString("advising to stay indoors. Keep the response concise and practical.\n\n")

	fmt.Fprintf(&b, "Temperature:\n- Maximum: %.1f°C\n- Minimum: %.1f°C\n- Average: %.1f°C\n- Cold days: %d%%\n- Hot days: %d%%\n\n",
		temp.MaxTemp, temp.MinTemp, temp.AvgTemp,
		formatPercent(temp.ColdTempPercent), formatPercent(temp.HotTempPercent))

	fmt.Fprintf(&b, "Humidity:\n- Average: %.1f%%\n- High humidity days: %d%%\n\n",
		humidity.AvgHumidity, formatPercent(humidity.HighHumidityPercent))

	fmt.Fprintf(&b, "Precipitation:\n- Average: %.1f mm\n- Rainy days: %d%%\n\n",
		precip.AvgPrecipitation, formatPercent(precip.PrecipitationPercent))

	fmt.Fprintf(&b, "Wind speed:\n- Average: %.1f km/h\n- Windy days: %d%%\n\n",
		wind.AvgWindSpeed, formatPercent(wind.HighWindSpeedPercent))

	fmt.Fprintf(&b, "Snow:\n- Snow precipitation: %.1f mm\n- Snowy days: %d%%\n- Snow depth: %.1f cm\n- Snow coverage: %d%%\n",
		snowPrecip.AvgSnowPrecipitation, formatPercent(snowPrecip.SnowPrecipitationPercent),
		snowDepth.AvgSnowDepth, formatPercent(snowDepth.SnowDepthPercent))

	return b.String()
}
