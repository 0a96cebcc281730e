// Package climate implements the client for the historical weather
// aggregation backend. It is a secondary adapter: it translates a domain
// query into the backend's path-parameter GET call and maps every failure
// mode onto the domain's service-unavailable error.
package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
)

// Client fetches weather aggregates over HTTP.
type Client struct {
	// baseURL is the aggregation backend base endpoint
	baseURL string

	// httpClient handles HTTP communication with timeout configuration
	httpClient *http.Client

	// logger records API interactions and errors
	logger *zap.Logger
}

// NewClient creates a new aggregation backend client.
//
// Parameters:
//   - baseURL: backend base URL, no trailing slash
//   - httpClient: HTTP client with timeout configuration
//   - logger: Zap logger for API interaction logging
//
// Returns:
//   - *Client: Configured aggregation backend client
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// errorResponse is the backend's error body. The message, when present, is
// written for end users and is surfaced verbatim.
type errorResponse struct {
	Message string `json:"message"`
}

// FetchAggregate performs one GET per query against the backend's
// /{lat}/{lon}/{date} endpoint with the accuracy mode as a query flag.
//
// Every failure mode - transport error, non-2xx status, malformed body -
// comes back as a domain service-unavailable error so the caller can treat
// the backend as a single opaque dependency.
func (c *Client) FetchAggregate(ctx context.Context, query domain.WeatherQuery) (*domain.WeatherAggregate, error) {
	url := fmt.Sprintf("%s/%.4f/%.4f/%s?accuracy=%t",
		c.baseURL, query.Coordinate.Lat, query.Coordinate.Lon, query.Date, query.AccuracyMode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, domain.WrapError(domain.CodeServiceUnavailable, domain.GenericServiceMessage, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Climascope/1.0")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		c.logger.Warn("aggregation backend unreachable", zap.Error(err))

		return nil, domain.WrapError(domain.CodeServiceUnavailable, domain.GenericServiceMessage, err)
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.errorFromResponse(resp)
	}

	var aggregate domain.WeatherAggregate

	if err := json.NewDecoder(resp.Body).Decode(&aggregate); err != nil {
		c.logger.Warn("malformed aggregate body", zap.Error(err))

		return nil, domain.WrapError(domain.CodeServiceUnavailable, domain.GenericServiceMessage, err)
	}

	return &aggregate, nil
}

// errorFromResponse maps a non-2xx response to a domain error. The backend
// sends user-facing messages in a {"message": ...} body; anything else
// falls back to the generic message.
func (c *Client) errorFromResponse(resp *http.Response) error {
	message := domain.GenericServiceMessage

	var body errorResponse

	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}

	c.logger.Warn("aggregation backend error",
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))

	return domain.NewError(domain.CodeServiceUnavailable, message)
}
