// Package rest implements the HTTP handlers for the climate dashboard API.
// This package is the primary adapter: it translates HTTP requests into
// dashboard operations and formats fetch-state snapshots for clients.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
	"github.com/climascope/climascope/internal/core/ports"
	"github.com/climascope/climascope/internal/core/services"
	"github.com/climascope/climascope/internal/middleware"
)

// SessionHeader carries the dashboard session identifier. Clients without
// one get a fresh ID assigned, echoed back in the same header.
const SessionHeader = "X-Session-ID"

// DashboardHandler handles HTTP requests for the dashboard operations.
type DashboardHandler struct {
	// service provides the acquisition, retry and recommendation flows
	service ports.DashboardService

	// validate checks query parameter shapes before they reach the service
	validate *validator.Validate

	// logger records request processing events and errors
	logger *zap.Logger
}

// NewDashboardHandler creates the HTTP handler for dashboard operations.
func NewDashboardHandler(service ports.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// pointParams holds the map-click query parameters after parsing.
type pointParams struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

// AcceptedResponse acknowledges an issued query. The fetch result arrives
// through the state endpoint.
type AcceptedResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// StateResponse is the client-facing fetch-state snapshot. Cards are
// present only in the success phase, Error only in the failure phase.
type StateResponse struct {
	SessionID string               `json:"sessionId"`
	Phase     string               `json:"phase"`
	Label     string               `json:"label,omitempty"`
	Query     *domain.WeatherQuery `json:"query,omitempty"`
	Cards     []domain.MetricCard  `json:"cards,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// RecommendationResponse wraps advisor output.
type RecommendationResponse struct {
	SessionID string `json:"sessionId"`
	Advice    string `json:"advice"`
}

// ErrorResponse represents a standardized error response structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Search handles GET requests for the named-city path.
//
// Query parameters: city, date (YYYY-MM-DD), accuracy (optional bool).
//
// Response codes:
//   - 202: Query issued, poll the state endpoint
//   - 400: Validation failure (MISSING_DATE, INVALID_DATE, DATE_TOO_OLD, UNKNOWN_LOCATION)
//   - 503: LOCATION_UNAVAILABLE or WEATHER_SERVICE_UNAVAILABLE
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	query := r.URL.Query()

	err := h.service.SearchByName(r.Context(), sessionID,
		query.Get("city"), query.Get("date"), parseAccuracy(query.Get("accuracy")))

	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, AcceptedResponse{
		SessionID: sessionID,
		Status:    string(domain.PhaseLoading),
	})
}

// Locate handles GET requests for the device-position path. The position is
// derived from the caller's network address.
func (h *DashboardHandler) Locate(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	query := r.URL.Query()

	err := h.service.SearchByDevice(r.Context(), sessionID,
		middleware.GetClientIP(r), query.Get("date"), parseAccuracy(query.Get("accuracy")))

	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, AcceptedResponse{
		SessionID: sessionID,
		Status:    string(domain.PhaseLoading),
	})
}

// Point handles GET requests for the map-click path.
//
// Query parameters: lat, lon, date (YYYY-MM-DD), accuracy (optional bool).
func (h *DashboardHandler) Point(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	query := r.URL.Query()

	latStr := query.Get("lat")
	lonStr := query.Get("lon")

	if latStr == "" || lonStr == "" {
		h.respondWithError(
			w,
			http.StatusBadRequest,
			domain.CodeInvalidCoordinate,
			"Both 'lat' and 'lon' query parameters are required",
		)

		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)

	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, domain.CodeInvalidCoordinate, "Invalid latitude format")
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)

	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, domain.CodeInvalidCoordinate, "Invalid longitude format")
		return
	}

	if err := h.validate.Struct(pointParams{Lat: lat, Lon: lon}); err != nil {
		h.respondWithError(w, http.StatusBadRequest, domain.CodeInvalidCoordinate,
			"The selected coordinates are invalid.")

		return
	}

	err = h.service.SearchByMapClick(r.Context(), sessionID,
		lat, lon, query.Get("date"), parseAccuracy(query.Get("accuracy")))

	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, AcceptedResponse{
		SessionID: sessionID,
		Status:    string(domain.PhaseLoading),
	})
}

// State handles GET requests for the session's current fetch state.
func (h *DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	state := h.service.Snapshot(sessionID)

	response := StateResponse{
		SessionID: sessionID,
		Phase:     string(state.Phase),
		Label:     state.Label,
		Query:     state.Query,
	}

	switch state.Phase {
	case domain.PhaseSuccess:
		response.Cards = services.MapToCards(state.Result)
	case domain.PhaseFailure:
		response.Error = state.ErrorMessage
	}

	h.respondWithJSON(w, http.StatusOK, response)
}

// Retry handles POST requests that re-issue the session's last query.
func (h *DashboardHandler) Retry(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	if err := h.service.Retry(r.Context(), sessionID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusAccepted, AcceptedResponse{
		SessionID: sessionID,
		Status:    string(domain.PhaseLoading),
	})
}

// Recommend handles POST requests for advisor text about the session's
// current weather result.
func (h *DashboardHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	advice, err := h.service.Recommend(r.Context(), sessionID)

	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, RecommendationResponse{
		SessionID: sessionID,
		Advice:    advice,
	})
}

// sessionID returns the caller's session ID, minting one when the header is
// absent. The ID is always echoed so clients can adopt a minted one.
func (h *DashboardHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	sessionID := r.Header.Get(SessionHeader)

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	w.Header().Set(SessionHeader, sessionID)

	return sessionID
}

// parseAccuracy reads the optional accuracy flag; anything unparseable
// means the cheaper standard computation.
func parseAccuracy(value string) bool {
	accuracy, err := strconv.ParseBool(value)

	if err != nil {
		return false
	}

	return accuracy
}

// respondWithJSON sends a JSON response with the specified status code.
func (h *DashboardHandler) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondWithError sends a standardized error response.
func (h *DashboardHandler) respondWithError(w http.ResponseWriter, status int, code, message string) {
	h.respondWithJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// handleServiceError maps domain errors to HTTP responses. Validation-class
// codes are client mistakes; unavailable-class codes mean a collaborator is
// down and retrying may help.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, err error) {
	var we *domain.WeatherError

	if errors.As(err, &we) {
		switch we.Code {
		case domain.CodeMissingDate,
			domain.CodeInvalidDate,
			domain.CodeDateTooOld,
			domain.CodeUnknownLocation,
			domain.CodeInvalidCoordinate,
			domain.CodeNoActiveQuery,
			domain.CodeNoWeatherData:
			h.respondWithError(w, http.StatusBadRequest, we.Code, we.Message)
		case domain.CodeLocationUnavailable,
			domain.CodeServiceUnavailable,
			domain.CodeAdvisorUnavailable:
			h.respondWithError(w, http.StatusServiceUnavailable, we.Code, we.Message)
		default:
			h.respondWithError(w, http.StatusInternalServerError, we.Code, we.Message)
		}

		return
	}

	h.logger.Error("unhandled service error", zap.Error(err))
	h.respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"An unexpected error occurred")
}
