package climate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
)

func testQuery() domain.WeatherQuery {
	return domain.WeatherQuery{
		Coordinate:   domain.Coordinate{Lat: 30.0444, Lon: 31.2357},
		Date:         "2026-07-01",
		AccuracyMode: true,
		Source:       domain.SourceCity,
	}
}

func TestFetchAggregate_Success(t *testing.T) {
	var gotPath, gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"temperature": {
				"maxTemp": 38.4,
				"minTemp": 24.1,
				"avgTemp": 31.2,
				"coldTempPercent": 0,
				"hotTempPercent": 74.5,
				"description": "Hot and dry"
			},
			"humidity": {
				"avgHumidity": 41.0,
				"highHumidityPercent": 3.2,
				"description": "Dry air"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), zap.NewNop())

	aggregate, err := client.FetchAggregate(context.Background(), testQuery())

	assert.NoError(t, err)
	assert.Equal(t, "/30.0444/31.2357/2026-07-01", gotPath)
	assert.Equal(t, "accuracy=true", gotQuery)
	assert.Equal(t, 38.4, aggregate.Temperature.MaxTemp)
	assert.Equal(t, 74.5, aggregate.Temperature.HotTempPercent)
	assert.Equal(t, "Dry air", aggregate.Humidity.Description)
	// Dimensions the backend omitted stay nil for the mapper to default.
	assert.Nil(t, aggregate.Precipitation)
	assert.Nil(t, aggregate.SnowDepth)
}

func TestFetchAggregate_AccuracyFlagOff(t *testing.T) {
	var gotQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), zap.NewNop())
	query := testQuery()
	query.AccuracyMode = false

	_, err := client.FetchAggregate(context.Background(), query)

	assert.NoError(t, err)
	assert.Equal(t, "accuracy=false", gotQuery)
}

// TestFetchAggregate_ErrorBodyMessage: a structured backend error carries
// its own user-facing message.
func TestFetchAggregate_ErrorBodyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message": "Weather provider is overloaded, try again shortly."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), zap.NewNop())

	_, err := client.FetchAggregate(context.Background(), testQuery())

	assert.Equal(t, domain.CodeServiceUnavailable, domain.ErrorCode(err))
	assert.Equal(t, "Weather provider is overloaded, try again shortly.", domain.UserMessage(err))
}

// TestFetchAggregate_UnstructuredError falls back to the generic message
// when the error body is not parseable.
func TestFetchAggregate_UnstructuredError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "html error page", status: http.StatusInternalServerError, body: "<html>boom</html>"},
		{name: "empty body", status: http.StatusServiceUnavailable, body: ""},
		{name: "json without message", status: http.StatusNotFound, body: `{"error": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, server.Client(), zap.NewNop())

			_, err := client.FetchAggregate(context.Background(), testQuery())

			assert.Equal(t, domain.CodeServiceUnavailable, domain.ErrorCode(err))
			assert.Equal(t, domain.GenericServiceMessage, domain.UserMessage(err))
		})
	}
}

func TestFetchAggregate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, &http.Client{Timeout: time.Second}, zap.NewNop())

	_, err := client.FetchAggregate(context.Background(), testQuery())

	assert.Equal(t, domain.CodeServiceUnavailable, domain.ErrorCode(err))
	assert.Equal(t, domain.GenericServiceMessage, domain.UserMessage(err))
}

func TestFetchAggregate_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"temperature": "not an object"`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), zap.NewNop())

	_, err := client.FetchAggregate(context.Background(), testQuery())

	assert.Equal(t, domain.CodeServiceUnavailable, domain.ErrorCode(err))
}

func TestFetchAggregate_ContextCancelled(t *testing.T) {
	started := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-started
		cancel()
	}()

	_, err := client.FetchAggregate(ctx, testQuery())

	assert.Equal(t, domain.CodeServiceUnavailable, domain.ErrorCode(err))
}
