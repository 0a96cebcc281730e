package domain

// Dimension names the closed set of weather dimensions shown on the
// dashboard. Every dimension maps to exactly one color theme.
type Dimension string

const (
	DimTemperature       Dimension = "temperature"
	DimHumidity          Dimension = "humidity"
	DimPrecipitation     Dimension = "precipitation"
	DimWindSpeed         Dimension = "windSpeed"
	DimSnowPrecipitation Dimension = "snowPrecipitation"
	DimSnowDepth         Dimension = "snowDepth"
)

// CardStat is a single labelled, pre-formatted statistic on a metric card.
type CardStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Prediction sizes the risk indicator bar on a metric card. Percent is an
// integer in [0,100].
type Prediction struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// MetricCard is one display-ready dashboard card for a weather dimension.
type MetricCard struct {
	Dimension   Dimension  `json:"dimension"`
	Title       string     `json:"title"`
	Stats       []CardStat `json:"stats"`
	Prediction  Prediction `json:"prediction"`
	Description string     `json:"description"`
	Theme       string     `json:"theme"`
}
