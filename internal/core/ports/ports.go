package ports

import (
	"context"
	"time"

	"github.com/climascope/climascope/internal/core/domain"
)

// DashboardService is the primary port: the three acquisition paths plus the
// session-scoped state, retry and enrichment operations.
type DashboardService interface {
	SearchByName(ctx context.Context, sessionID, city, date string, accuracy bool) error
	SearchByDevice(ctx context.Context, sessionID, clientIP, date string, accuracy bool) error
	SearchByMapClick(ctx context.Context, sessionID string, lat, lon float64, date string, accuracy bool) error
	Retry(ctx context.Context, sessionID string) error
	Snapshot(sessionID string) domain.FetchState
	Recommend(ctx context.Context, sessionID string) (string, error)
}

// AggregateClient fetches pre-computed weather statistics from the upstream
// aggregation service.
type AggregateClient interface {
	FetchAggregate(ctx context.Context, query domain.WeatherQuery) (*domain.WeatherAggregate, error)
}

// Geocoder resolves a coordinate to a display label. Implementations never
// fail; they degrade to a formatted coordinate string.
type Geocoder interface {
	Resolve(ctx context.Context, coord domain.Coordinate) string
}

// Locator is the device-position capability: it produces the caller's
// current coordinate or a location-unavailable error.
type Locator interface {
	Locate(ctx context.Context, clientIP string) (domain.Coordinate, error)
}

// Advisor produces free-text recommendations for a weather summary.
type Advisor interface {
	Recommend(ctx context.Context, prompt string) (string, error)
}

// CacheService is the shared cache abstraction used for geocoding labels.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// RateLimitService limits request rates per client identifier.
type RateLimitService interface {
	Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, identifier string) error
}
