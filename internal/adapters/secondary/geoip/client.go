// Package geoip resolves the caller's approximate position from their IP
// address. It backs the "use my location" path when no client-supplied
// coordinate is available, so precision is city-level at best.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
)

// Client looks up coordinates on a freegeoip-compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a GeoIP lookup client.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type lookupResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locate resolves the client IP to a coordinate. Private and unparseable
// addresses resolve to 0,0 on most providers, which fails the coordinate
// check below, so such callers get a clean location-unavailable error
// instead of weather for the Gulf of Guinea.
func (c *Client) Locate(ctx context.Context, clientIP string) (domain.Coordinate, error) {
	if clientIP == "" {
		return domain.Coordinate{}, fmt.Errorf("client address unknown")
	}

	url := fmt.Sprintf("%s/json/%s", c.baseURL, clientIP)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return domain.Coordinate{}, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Climascope/1.0")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		c.logger.Warn("geoip lookup failed", zap.Error(err))

		return domain.Coordinate{}, err
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("geoip service returned status %d", resp.StatusCode)
	}

	var lookup lookupResponse

	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return domain.Coordinate{}, err
	}

	coord := domain.Coordinate{Lat: lookup.Latitude, Lon: lookup.Longitude}

	if coord.Lat == 0 && coord.Lon == 0 {
		return domain.Coordinate{}, fmt.Errorf("no position known for address")
	}

	if err := coord.Validate(); err != nil {
		return domain.Coordinate{}, err
	}

	return coord, nil
}
