// Package advisor calls the recommendation service that turns a weather
// summary into short free-text advice.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Client posts prompts to the recommendation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a recommendation service client.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type recommendRequest struct {
	Msg string `json:"msg"`
}

// Recommend sends the prompt and returns the advice text. Responses are
// plain text; empty advice is treated as a failure so callers never render
// a blank recommendation panel.
func (c *Client) Recommend(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(recommendRequest{Msg: prompt})

	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/recommendations", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))

	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)

	if err != nil {
		c.logger.Warn("advisor request failed", zap.Error(err))

		return "", err
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("advisor returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return "", err
	}

	advice := strings.TrimSpace(string(body))

	if advice == "" {
		return "", fmt.Errorf("advisor returned empty advice")
	}

	return advice, nil
}
