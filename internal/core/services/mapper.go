package services

import (
	"fmt"
	"math"

	"github.com/climascope/climascope/internal/core/domain"
)

// PlaceholderDescription stands in for a missing dimension description.
const PlaceholderDescription = "No data available"

// cardThemes is the total dimension-to-palette lookup. The dimension set is
// closed, so no fallback entry exists.
var cardThemes = map[domain.Dimension]string{
	domain.DimTemperature:       "blue",
	domain.DimHumidity:          "cyan",
	domain.DimPrecipitation:     "indigo",
	domain.DimWindSpeed:         "green",
	domain.DimSnowPrecipitation: "purple",
	domain.DimSnowDepth:         "slate",
}

// MapToCards transforms a raw aggregate into the six display-ready metric
// cards. It is a pure function: missing dimensions produce cards with zero
// stats, a zero prediction percent and a placeholder description rather
// than an error, since the upstream source is untrusted.
func MapToCards(aggregate *domain.WeatherAggregate) []domain.MetricCard {
	if aggregate == nil {
		aggregate = &domain.WeatherAggregate{}
	}

	return []domain.MetricCard{
		temperatureCard(aggregate.Temperature),
		humidityCard(aggregate.Humidity),
		precipitationCard(aggregate.Precipitation),
		windSpeedCard(aggregate.WindSpeed),
		snowPrecipitationCard(aggregate.SnowPrecipitation),
		snowDepthCard(aggregate.SnowDepth),
	}
}

// temperatureCard picks its prediction line dynamically: the cold-days
// percent wins ties so a 50/50 split reads as cold.
func temperatureCard(stats *domain.TemperatureStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.TemperatureStats{Description: PlaceholderDescription}
	}

	prediction := domain.Prediction{Label: "Hot days", Percent: formatPercent(stats.HotTempPercent)}

	if stats.ColdTempPercent >= stats.HotTempPercent {
		prediction = domain.Prediction{Label: "Cold days", Percent: formatPercent(stats.ColdTempPercent)}
	}

	return domain.MetricCard{
		Dimension: domain.DimTemperature,
		Title:     "Temperature",
		Stats: []domain.CardStat{
			{Label: "Maximum", Value: formatStat(stats.MaxTemp, "°C")},
			{Label: "Minimum", Value: formatStat(stats.MinTemp, "°C")},
			{Label: "Average", Value: formatStat(stats.AvgTemp, "°C")},
		},
		Prediction:  prediction,
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimTemperature],
	}
}

func humidityCard(stats *domain.HumidityStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.HumidityStats{Description: PlaceholderDescription}
	}

	return domain.MetricCard{
		Dimension: domain.DimHumidity,
		Title:     "Humidity",
		Stats: []domain.CardStat{
			{Label: "Average", Value: formatStat(stats.AvgHumidity, "%")},
		},
		Prediction:  domain.Prediction{Label: "High humidity days", Percent: formatPercent(stats.HighHumidityPercent)},
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimHumidity],
	}
}

func precipitationCard(stats *domain.PrecipitationStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.PrecipitationStats{Description: PlaceholderDescription}
	}

	return domain.MetricCard{
		Dimension: domain.DimPrecipitation,
		Title:     "Precipitation",
		Stats: []domain.CardStat{
			{Label: "Average", Value: formatStat(stats.AvgPrecipitation, " mm")},
		},
		Prediction:  domain.Prediction{Label: "Rainy days", Percent: formatPercent(stats.PrecipitationPercent)},
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimPrecipitation],
	}
}

func windSpeedCard(stats *domain.WindSpeedStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.WindSpeedStats{Description: PlaceholderDescription}
	}

	return domain.MetricCard{
		Dimension: domain.DimWindSpeed,
		Title:     "Wind Speed",
		Stats: []domain.CardStat{
			{Label: "Average", Value: formatStat(stats.AvgWindSpeed, " km/h")},
		},
		Prediction:  domain.Prediction{Label: "Windy days", Percent: formatPercent(stats.HighWindSpeedPercent)},
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimWindSpeed],
	}
}

func snowPrecipitationCard(stats *domain.SnowPrecipStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.SnowPrecipStats{Description: PlaceholderDescription}
	}

	return domain.MetricCard{
		Dimension: domain.DimSnowPrecipitation,
		Title:     "Snow Precipitation",
		Stats: []domain.CardStat{
			{Label: "Average", Value: formatStat(stats.AvgSnowPrecipitation, " mm")},
		},
		Prediction:  domain.Prediction{Label: "Snowy days", Percent: formatPercent(stats.SnowPrecipitationPercent)},
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimSnowPrecipitation],
	}
}

func snowDepthCard(stats *domain.SnowDepthStats) domain.MetricCard {
	if stats == nil {
		stats = &domain.SnowDepthStats{Description: PlaceholderDescription}
	}

	return domain.MetricCard{
		Dimension: domain.DimSnowDepth,
		Title:     "Snow Depth",
		Stats: []domain.CardStat{
			{Label: "Average depth", Value: formatStat(stats.AvgSnowDepth, " cm")},
		},
		Prediction:  domain.Prediction{Label: "Snow coverage", Percent: formatPercent(stats.SnowDepthPercent)},
		Description: describeOr(stats.Description),
		Theme:       cardThemes[domain.DimSnowDepth],
	}
}

// formatStat renders a card-level statistic with one decimal place and its
// fixed unit suffix.
func formatStat(value float64, unit string) string {
	return fmt.Sprintf("%.1f%s", value, unit)
}

// formatPercent rounds a prediction percent to the nearest integer and
// clamps it to [0,100]; the upstream is untrusted.
func formatPercent(value float64) int {
	if math.IsNaN(value) || value < 0 {
		return 0
	}

	if value > 100 {
		return 100
	}

	return int(math.Round(value))
}

func describeOr(description string) string {
	if description == "" {
		return PlaceholderDescription
	}

	return description
}
