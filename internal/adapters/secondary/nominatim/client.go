// Package nominatim reverse-geocodes coordinates into place labels using a
// Nominatim-compatible endpoint. The adapter is deliberately lossy: any
// failure degrades to the formatted coordinate fallback, never an error,
// because a label is decoration and must not gate the weather flow.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
	"github.com/climascope/climascope/internal/core/ports"
	"github.com/climascope/climascope/internal/observability"
)

// labelTTL is how long a resolved label stays cached. Place names do not
// change; the TTL only bounds cache growth.
const labelTTL = time.Hour

// Client resolves coordinates to labels with a read-through cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ports.CacheService
	telemetry  *observability.Telemetry
	logger     *zap.Logger
}

// NewClient creates a reverse-geocoding client. The cache is required; pass
// the in-memory implementation when Redis is not configured.
func NewClient(baseURL string, httpClient *http.Client, cache ports.CacheService, telemetry *observability.Telemetry, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
		telemetry:  telemetry,
		logger:     logger,
	}
}

// reverseResponse is the subset of the Nominatim reverse payload we read.
type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
	DisplayName string `json:"display_name"`
}

// Resolve returns a human place label for the coordinate, or the formatted
// coordinate string when the label cannot be produced in time.
func (c *Client) Resolve(ctx context.Context, coord domain.Coordinate) string {
	key := cacheKey(coord)

	if cached, err := c.cache.Get(ctx, key); err == nil && len(cached) > 0 {
		return string(cached)
	}

	label, err := c.lookup(ctx, coord)

	if err != nil {
		c.logger.Warn("reverse geocoding failed, using coordinate label",
			zap.Float64("lat", coord.Lat),
			zap.Float64("lon", coord.Lon),
			zap.Error(err))

		if c.telemetry != nil {
			c.telemetry.RecordGeocodeFallback(ctx)
		}

		return coord.FallbackLabel()
	}

	if err := c.cache.Set(ctx, key, []byte(label), labelTTL); err != nil {
		c.logger.Debug("label cache write failed", zap.Error(err))
	}

	return label
}

func (c *Client) lookup(ctx context.Context, coord domain.Coordinate) (string, error) {
	url := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&format=json", c.baseURL, coord.Lat, coord.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", "Climascope/1.0")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		return "", err
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var reverse reverseResponse

	if err := json.NewDecoder(resp.Body).Decode(&reverse); err != nil {
		return "", err
	}

	// Prefer the most specific populated place, then the full display name.
	switch {
	case reverse.Address.City != "":
		return reverse.Address.City, nil
	case reverse.Address.Town != "":
		return reverse.Address.Town, nil
	case reverse.Address.Village != "":
		return reverse.Address.Village, nil
	case reverse.DisplayName != "":
		return reverse.DisplayName, nil
	}

	return "", fmt.Errorf("geocoder response contained no usable name")
}

func cacheKey(coord domain.Coordinate) string {
	return fmt.Sprintf("geocode:%.4f,%.4f", coord.Lat, coord.Lon)
}
