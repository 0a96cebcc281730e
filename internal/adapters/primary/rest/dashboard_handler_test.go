// Package rest contains unit tests for the dashboard API handlers.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
)

// MockDashboardService is a mock implementation of the DashboardService
// interface.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) SearchByName(ctx context.Context, sessionID, city, date string, accuracy bool) error {
	args := m.Called(ctx, sessionID, city, date, accuracy)

	return args.Error(0)
}

func (m *MockDashboardService) SearchByDevice(ctx context.Context, sessionID, clientIP, date string, accuracy bool) error {
	args := m.Called(ctx, sessionID, clientIP, date, accuracy)

	return args.Error(0)
}

func (m *MockDashboardService) SearchByMapClick(ctx context.Context, sessionID string, lat, lon float64, date string, accuracy bool) error {
	args := m.Called(ctx, sessionID, lat, lon, date, accuracy)

	return args.Error(0)
}

func (m *MockDashboardService) Retry(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)

	return args.Error(0)
}

func (m *MockDashboardService) Snapshot(sessionID string) domain.FetchState {
	args := m.Called(sessionID)

	return args.Get(0).(domain.FetchState)
}

func (m *MockDashboardService) Recommend(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)

	return args.String(0), args.Error(1)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

// TestDashboardHandler_Search covers the named-city endpoint.
func TestDashboardHandler_Search(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "query issued",
			queryParams:    "?city=cairo&date=2026-07-01&accuracy=true",
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing date",
			queryParams:    "?city=cairo",
			mockError:      domain.NewError(domain.CodeMissingDate, "Please select a date first."),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeMissingDate,
		},
		{
			name:           "unknown city",
			queryParams:    "?city=atlantis&date=2026-07-01",
			mockError:      domain.NewError(domain.CodeUnknownLocation, "Unknown city. Please try coordinates instead."),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeUnknownLocation,
		},
		{
			name:           "date too old",
			queryParams:    "?city=cairo&date=1950-01-01",
			mockError:      domain.NewError(domain.CodeDateTooOld, "Dates more than 50 years in the past are not supported."),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeDateTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)
			service.On("SearchByName", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(tt.mockError)

			handler := NewDashboardHandler(service, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/search"+tt.queryParams, nil)
			rec := httptest.NewRecorder()

			handler.Search(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			}

			service.AssertExpectations(t)
		})
	}
}

// TestDashboardHandler_SearchMintsSessionID: a request without a session
// header gets one assigned and echoed.
func TestDashboardHandler_SearchMintsSessionID(t *testing.T) {
	service := new(MockDashboardService)
	service.On("SearchByName", mock.Anything, mock.Anything, "cairo", "2026-07-01", false).Return(nil)

	handler := NewDashboardHandler(service, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?city=cairo&date=2026-07-01", nil)
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.NotEmpty(t, rec.Header().Get(SessionHeader))

	var body AcceptedResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, rec.Header().Get(SessionHeader), body.SessionID)
	assert.Equal(t, "loading", body.Status)
}

// TestDashboardHandler_SearchKeepsSessionID: an existing session header is
// passed through to the service untouched.
func TestDashboardHandler_SearchKeepsSessionID(t *testing.T) {
	service := new(MockDashboardService)
	service.On("SearchByName", mock.Anything, "existing-session", "cairo", "2026-07-01", false).Return(nil)

	handler := NewDashboardHandler(service, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/search?city=cairo&date=2026-07-01", nil)
	req.Header.Set(SessionHeader, "existing-session")
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "existing-session", rec.Header().Get(SessionHeader))
	service.AssertExpectations(t)
}

// TestDashboardHandler_Locate covers the device-position endpoint.
func TestDashboardHandler_Locate(t *testing.T) {
	t.Run("query issued with client address", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("SearchByDevice", mock.Anything, mock.Anything, "203.0.113.9", "2026-07-01", false).Return(nil)

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/locate?date=2026-07-01", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rec := httptest.NewRecorder()

		handler.Locate(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("position unavailable", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("SearchByDevice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(domain.NewError(domain.CodeLocationUnavailable,
				"Unable to fetch your location. Please allow location access."))

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/locate?date=2026-07-01", nil)
		rec := httptest.NewRecorder()

		handler.Locate(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, domain.CodeLocationUnavailable, decodeError(t, rec).Error)
	})
}

// TestDashboardHandler_Point covers the map-click endpoint, including the
// parameter shapes that never reach the service.
func TestDashboardHandler_Point(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		callsService   bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "query issued",
			queryParams:    "?lat=30.0444&lon=31.2357&date=2026-07-01",
			callsService:   true,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing coordinates",
			queryParams:    "?date=2026-07-01",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalidCoordinate,
		},
		{
			name:           "unparseable latitude",
			queryParams:    "?lat=north&lon=31.2357&date=2026-07-01",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalidCoordinate,
		},
		{
			name:           "latitude out of range",
			queryParams:    "?lat=91.5&lon=31.2357&date=2026-07-01",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalidCoordinate,
		},
		{
			name:           "longitude out of range",
			queryParams:    "?lat=30.0&lon=-200&date=2026-07-01",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.CodeInvalidCoordinate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)

			if tt.callsService {
				service.On("SearchByMapClick", mock.Anything, mock.Anything, 30.0444, 31.2357, "2026-07-01", false).
					Return(nil)
			}

			handler := NewDashboardHandler(service, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/point"+tt.queryParams, nil)
			rec := httptest.NewRecorder()

			handler.Point(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			}

			service.AssertExpectations(t)
		})
	}
}

// TestDashboardHandler_State covers the snapshot endpoint across phases.
func TestDashboardHandler_State(t *testing.T) {
	tests := []struct {
		name      string
		state     domain.FetchState
		wantPhase string
		wantCards int
		wantError string
	}{
		{
			name:      "idle session",
			state:     domain.FetchState{Phase: domain.PhaseIdle},
			wantPhase: "idle",
		},
		{
			name: "loading session",
			state: domain.FetchState{
				Phase: domain.PhaseLoading,
				Label: "Cairo",
			},
			wantPhase: "loading",
		},
		{
			name: "successful session renders cards",
			state: domain.FetchState{
				Phase: domain.PhaseSuccess,
				Label: "Cairo",
				Result: &domain.WeatherAggregate{
					Temperature: &domain.TemperatureStats{AvgTemp: 26.4},
				},
			},
			wantPhase: "success",
			wantCards: 6,
		},
		{
			name: "failed session surfaces message",
			state: domain.FetchState{
				Phase:        domain.PhaseFailure,
				ErrorMessage: domain.GenericServiceMessage,
			},
			wantPhase: "failure",
			wantError: domain.GenericServiceMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockDashboardService)
			service.On("Snapshot", mock.Anything).Return(tt.state)

			handler := NewDashboardHandler(service, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/state", nil)
			rec := httptest.NewRecorder()

			handler.State(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)

			var body StateResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantPhase, body.Phase)
			assert.Len(t, body.Cards, tt.wantCards)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

// TestDashboardHandler_Retry covers both retry outcomes.
func TestDashboardHandler_Retry(t *testing.T) {
	t.Run("re-issued", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Retry", mock.Anything, mock.Anything).Return(nil)

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/weather/retry", nil)
		rec := httptest.NewRecorder()

		handler.Retry(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("nothing to retry", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Retry", mock.Anything, mock.Anything).
			Return(domain.NewError(domain.CodeNoActiveQuery, "Nothing to retry yet."))

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/weather/retry", nil)
		rec := httptest.NewRecorder()

		handler.Retry(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.CodeNoActiveQuery, decodeError(t, rec).Error)
	})
}

// TestDashboardHandler_Recommend covers the advisor endpoint.
func TestDashboardHandler_Recommend(t *testing.T) {
	t.Run("advice returned", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Recommend", mock.Anything, mock.Anything).Return("Pack an umbrella.", nil)

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
		rec := httptest.NewRecorder()

		handler.Recommend(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body RecommendationResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Pack an umbrella.", body.Advice)
	})

	t.Run("no weather data", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Recommend", mock.Anything, mock.Anything).
			Return("", domain.NewError(domain.CodeNoWeatherData, "No weather data to analyze yet."))

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
		rec := httptest.NewRecorder()

		handler.Recommend(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.CodeNoWeatherData, decodeError(t, rec).Error)
	})

	t.Run("advisor unavailable", func(t *testing.T) {
		service := new(MockDashboardService)
		service.On("Recommend", mock.Anything, mock.Anything).
			Return("", domain.NewError(domain.CodeAdvisorUnavailable,
				"Unable to fetch AI recommendations. Please try again."))

		handler := NewDashboardHandler(service, zap.NewNop())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
		rec := httptest.NewRecorder()

		handler.Recommend(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
