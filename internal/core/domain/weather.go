// Package domain contains the core business entities for the climate
// dashboard. It defines the geographic, query and aggregate types that are
// independent of transport and infrastructure concerns.
package domain

import (
	"fmt"
	"math"
)

// QuerySource identifies which input modality produced a coordinate.
type QuerySource string

const (
	// SourceCity means the coordinate came from a named-city lookup
	SourceCity QuerySource = "city"

	// SourceDevice means the coordinate came from the caller's device position
	SourceDevice QuerySource = "device"

	// SourceMap means the coordinate was picked directly on the map
	SourceMap QuerySource = "map"
)

// Coordinate represents a geographic point using latitude and longitude.
type Coordinate struct {
	// Lat specifies the north-south position (-90 to 90 degrees)
	Lat float64 `json:"lat"`

	// Lon specifies the east-west position (-180 to 180 degrees)
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is finite and within valid geographic
// bounds. Map clicks can carry arbitrary values, so non-finite numbers are
// rejected before the range checks.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinate values must be finite numbers")
	}

	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", c.Lat)
	}

	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", c.Lon)
	}

	return nil
}

// FallbackLabel formats the coordinate as a display label, used whenever
// reverse geocoding cannot produce a place name.
func (c Coordinate) FallbackLabel() string {
	return fmt.Sprintf("Lat: %.2f, Lon: %.2f", c.Lat, c.Lon)
}

// WeatherQuery is a fully resolved request for weather aggregates.
// It is constructed fresh per user action and immutable once issued.
type WeatherQuery struct {
	// Coordinate is the geographic point to query
	Coordinate Coordinate `json:"coordinate"`

	// Date is the target calendar date in YYYY-MM-DD form
	Date string `json:"date"`

	// AccuracyMode requests a higher-fidelity computation upstream
	AccuracyMode bool `json:"accuracyMode"`

	// Source records which input modality produced the coordinate
	Source QuerySource `json:"source"`
}

// WeatherAggregate is the upstream response: pre-computed historical and
// predictive statistics per weather dimension. Any dimension may be absent,
// and absent percent fields decode to zero; consumers must tolerate both.
type WeatherAggregate struct {
	Temperature       *TemperatureStats   `json:"temperature,omitempty"`
	Humidity          *HumidityStats      `json:"humidity,omitempty"`
	Precipitation     *PrecipitationStats `json:"precipitation,omitempty"`
	WindSpeed         *WindSpeedStats     `json:"windSpeed,omitempty"`
	SnowPrecipitation *SnowPrecipStats    `json:"snowPrecipitation,omitempty"`
	SnowDepth         *SnowDepthStats     `json:"snowDepth,omitempty"`
}

// TemperatureStats holds the temperature dimension of an aggregate.
type TemperatureStats struct {
	MaxTemp         float64 `json:"maxTemp"`
	MinTemp         float64 `json:"minTemp"`
	AvgTemp         float64 `json:"avgTemp"`
	ColdTempPercent float64 `json:"coldTempPercent"`
	HotTempPercent  float64 `json:"hotTempPercent"`
	Description     string  `json:"description"`
}

// HumidityStats holds the humidity dimension of an aggregate.
type HumidityStats struct {
	AvgHumidity         float64 `json:"avgHumidity"`
	HighHumidityPercent float64 `json:"highHumidityPercent"`
	Description         string  `json:"description"`
}

// PrecipitationStats holds the rain dimension of an aggregate.
type PrecipitationStats struct {
	AvgPrecipitation     float64 `json:"avgPrecipitation"`
	PrecipitationPercent float64 `json:"precipitationPercent"`
	Description          string  `json:"description"`
}

// WindSpeedStats holds the wind dimension of an aggregate.
type WindSpeedStats struct {
	AvgWindSpeed         float64 `json:"avgWindSpeed"`
	HighWindSpeedPercent float64 `json:"highWindSpeedPercent"`
	Description          string  `json:"description"`
}

// SnowPrecipStats holds the snowfall dimension of an aggregate.
type SnowPrecipStats struct {
	AvgSnowPrecipitation     float64 `json:"avgSnowPrecipitation"`
	SnowPrecipitationPercent float64 `json:"snowPrecipitationPercent"`
	Description              string  `json:"description"`
}

// SnowDepthStats holds the snow-depth dimension of an aggregate.
type SnowDepthStats struct {
	AvgSnowDepth     float64 `json:"avgSnowDepth"`
	SnowDepthPercent float64 `json:"snowDepthPercent"`
	Description      string  `json:"description"`
}
