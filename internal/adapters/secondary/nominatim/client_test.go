package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failing bool
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return nil, assert.AnError
	}

	return c.entries[key], nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return assert.AnError
	}

	c.entries[key] = value

	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error { return nil }

func (c *mapCache) Clear(ctx context.Context) error { return nil }

func TestResolve_PlaceNamePreference(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "city preferred",
			body: `{"address": {"city": "Cairo", "town": "Giza"}, "display_name": "Cairo, Egypt"}`,
			want: "Cairo",
		},
		{
			name: "town when no city",
			body: `{"address": {"town": "Windsor"}, "display_name": "Windsor, UK"}`,
			want: "Windsor",
		},
		{
			name: "village when no town",
			body: `{"address": {"village": "Grindelwald"}}`,
			want: "Grindelwald",
		},
		{
			name: "display name as last resort",
			body: `{"address": {}, "display_name": "Sahara Desert"}`,
			want: "Sahara Desert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client(), newMapCache(), nil, zap.NewNop())

			label := client.Resolve(context.Background(), domain.Coordinate{Lat: 30.0444, Lon: 31.2357})

			assert.Equal(t, tt.want, label)
		})
	}
}

// TestResolve_FallbackLabel: every failure shape degrades to the formatted
// coordinate, never an error or an empty string.
func TestResolve_FallbackLabel(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"address":`))
			},
		},
		{
			name: "nameless response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"address": {}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, server.Client(), newMapCache(), nil, zap.NewNop())

			label := client.Resolve(context.Background(), domain.Coordinate{Lat: 30.0444, Lon: 31.2357})

			assert.Equal(t, "Lat: 30.04, Lon: 31.24", label)
		})
	}
}

func TestResolve_UnreachableGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, &http.Client{Timeout: time.Second}, newMapCache(), nil, zap.NewNop())

	label := client.Resolve(context.Background(), domain.Coordinate{Lat: -12.5, Lon: 130.8})

	assert.Equal(t, "Lat: -12.50, Lon: 130.80", label)
}

// TestResolve_CachedLabel: the second resolution for the same coordinate is
// served from the cache without touching the network.
func TestResolve_CachedLabel(t *testing.T) {
	var hits int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"address": {"city": "Paris"}}`))
	}))
	defer server.Close()

	cache := newMapCache()
	client := NewClient(server.URL, server.Client(), cache, nil, zap.NewNop())
	coord := domain.Coordinate{Lat: 48.8566, Lon: 2.3522}

	assert.Equal(t, "Paris", client.Resolve(context.Background(), coord))
	assert.Equal(t, "Paris", client.Resolve(context.Background(), coord))
	assert.Equal(t, 1, hits)
}

// TestResolve_CacheFailureIsNonFatal: a broken cache degrades to a network
// lookup, not an error.
func TestResolve_CacheFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address": {"city": "London"}}`))
	}))
	defer server.Close()

	cache := newMapCache()
	cache.failing = true
	client := NewClient(server.URL, server.Client(), cache, nil, zap.NewNop())

	label := client.Resolve(context.Background(), domain.Coordinate{Lat: 51.5072, Lon: -0.1276})

	assert.Equal(t, "London", label)
}
