// Package services implement the input-resolution flow, the per-session
// fetch state machine and the dashboard card mapping that sit between the
// HTTP layer and the external weather collaborators.
package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
	"github.com/climascope/climascope/internal/core/ports"
)

// maxDateAgeYears is the oldest supported query date relative to today.
// There is no upper bound: future dates are served from climate normals.
const maxDateAgeYears = 50

// geocodeTimeout bounds the fire-and-forget label lookup. It is detached
// from the weather request lifetime on purpose.
const geocodeTimeout = 10 * time.Second

// cityDirectory is the static name-to-coordinate table for the named-city
// path. Lookups are case-insensitive; unknown names are rejected rather
// than silently mapped to a default city.
var cityDirectory = map[string]domain.Coordinate{
	"cairo":  {Lat: 30.0444, Lon: 31.2357},
	"london": {Lat: 51.5072, Lon: -0.1276},
	"paris":  {Lat: 48.8566, Lon: 2.3522},
}

type dashboardService struct {
	sessions *SessionRegistry
	geocoder ports.Geocoder
	locator  ports.Locator
	advisor  ports.Advisor
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService wires the three acquisition paths, the session
// registry and the enrichment collaborators into the primary port.
func NewDashboardService(
	sessions *SessionRegistry,
	geocoder ports.Geocoder,
	locator ports.Locator,
	advisor ports.Advisor,
	logger *zap.Logger,
) ports.DashboardService {
	return &dashboardService{
		sessions: sessions,
		geocoder: geocoder,
		locator:  locator,
		advisor:  advisor,
		logger:   logger,
		now:      time.Now,
	}
}

// SearchByName resolves a city name against the static directory and issues
// a weather query. The typed name doubles as the display label.
func (s *dashboardService) SearchByName(ctx context.Context, sessionID, city, date string, accuracy bool) error {
	if err := s.validateDate(date); err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(city))
	coord, known := cityDirectory[key]

	if !known {
		s.logger.Info("unknown city rejected", zap.String("city", city))

		return domain.NewError(domain.CodeUnknownLocation, "Unknown city. Please try coordinates instead.")
	}

	session := s.sessions.Get(sessionID)
	token := session.Request(domain.WeatherQuery{
		Coordinate:   coord,
		Date:         date,
		AccuracyMode: accuracy,
		Source:       domain.SourceCity,
	})
	session.SetLabel(token, strings.TrimSpace(city))

	return nil
}

// SearchByDevice resolves the caller's current position and issues a
// weather query. A position failure leaves the fetch state untouched.
func (s *dashboardService) SearchByDevice(ctx context.Context, sessionID, clientIP, date string, accuracy bool) error {
	if err := s.validateDate(date); err != nil {
		return err
	}

	coord, err := s.locator.Locate(ctx, clientIP)

	if err != nil {
		s.logger.Warn("device position unavailable", zap.Error(err))

		return domain.WrapError(domain.CodeLocationUnavailable,
			"Unable to fetch your location. Please allow location access.", err)
	}

	s.dispatch(sessionID, coord, date, accuracy, domain.SourceDevice)

	return nil
}

// SearchByMapClick issues a weather query for a coordinate picked directly
// on the map. Out-of-range or non-finite coordinates are rejected, never
// forwarded to the backend.
func (s *dashboardService) SearchByMapClick(ctx context.Context, sessionID string, lat, lon float64, date string, accuracy bool) error {
	if err := s.validateDate(date); err != nil {
		return err
	}

	coord := domain.Coordinate{Lat: lat, Lon: lon}

	if err := coord.Validate(); err != nil {
		return domain.WrapError(domain.CodeInvalidCoordinate, "The selected coordinates are invalid.", err)
	}

	s.dispatch(sessionID, coord, date, accuracy, domain.SourceMap)

	return nil
}

// Retry re-issues the session's last query verbatim.
func (s *dashboardService) Retry(ctx context.Context, sessionID string) error {
	if !s.sessions.Get(sessionID).Retry() {
		return domain.NewError(domain.CodeNoActiveQuery, "Nothing to retry yet.")
	}

	return nil
}

// Snapshot returns the session's current fetch state.
func (s *dashboardService) Snapshot(sessionID string) domain.FetchState {
	return s.sessions.Get(sessionID).Snapshot()
}

// Recommend requests advisor text for the session's current result. It is a
// dashboard enrichment: failures are surfaced to the caller as dismissible
// errors and never touch the fetch state.
func (s *dashboardService) Recommend(ctx context.Context, sessionID string) (string, error) {
	state := s.sessions.Get(sessionID).Snapshot()

	if state.Phase != domain.PhaseSuccess || state.Result == nil {
		return "", domain.NewError(domain.CodeNoWeatherData, "No weather data to analyze yet.")
	}

	advice, err := s.advisor.Recommend(ctx, BuildAdvicePrompt(state.Result))

	if err != nil {
		s.logger.Warn("advisor request failed", zap.Error(err))

		return "", domain.WrapError(domain.CodeAdvisorUnavailable,
			"Unable to fetch AI recommendations. Please try again.", err)
	}

	return advice, nil
}

// dispatch issues the weather query and, for coordinate-born sources, kicks
// off the label lookup concurrently. The label task is fire-and-forget with
// respect to the weather result: it joins only at the presentation boundary.
func (s *dashboardService) dispatch(sessionID string, coord domain.Coordinate, date string, accuracy bool, source domain.QuerySource) {
	session := s.sessions.Get(sessionID)

	token := session.Request(domain.WeatherQuery{
		Coordinate:   coord,
		Date:         date,
		AccuracyMode: accuracy,
		Source:       source,
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), geocodeTimeout)
		defer cancel()

		session.SetLabel(token, s.geocoder.Resolve(ctx, coord))
	}()
}

// validateDate gates all three acquisition paths. An empty date and a date
// more than maxDateAgeYears in the past are rejected; future dates pass.
func (s *dashboardService) validateDate(date string) error {
	if date == "" {
		return domain.NewError(domain.CodeMissingDate, "Please select a date first.")
	}

	parsed, err := time.Parse("2006-01-02", date)

	if err != nil {
		return domain.WrapError(domain.CodeInvalidDate, "The date must be a valid YYYY-MM-DD calendar date.", err)
	}

	// The bound is a whole-day comparison: a date exactly fifty years back
	// stays valid for the entire current day, whatever the wall-clock time.
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if parsed.Before(today.AddDate(-maxDateAgeYears, 0, 0)) {
		return domain.NewError(domain.CodeDateTooOld, "Dates more than 50 years in the past are not supported.")
	}

	return nil
}
