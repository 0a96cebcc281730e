package domain

import (
	"errors"
	"fmt"
)

// Error codes for the input-resolution and fetch flow. Validation codes are
// resolved locally and shown inline; service codes populate the failure state.
const (
	CodeMissingDate         = "MISSING_DATE"
	CodeInvalidDate         = "INVALID_DATE"
	CodeDateTooOld          = "DATE_TOO_OLD"
	CodeUnknownLocation     = "UNKNOWN_LOCATION"
	CodeLocationUnavailable = "LOCATION_UNAVAILABLE"
	CodeInvalidCoordinate   = "INVALID_COORDINATE"
	CodeServiceUnavailable  = "WEATHER_SERVICE_UNAVAILABLE"
	CodeNoActiveQuery       = "NO_ACTIVE_QUERY"
	CodeNoWeatherData       = "NO_WEATHER_DATA"
	CodeAdvisorUnavailable  = "ADVISOR_UNAVAILABLE"
)

// GenericServiceMessage is shown when the upstream fails without a usable
// error body.
const GenericServiceMessage = "Weather service unavailable."

// WeatherError represents domain-specific errors that can occur while
// resolving and fetching weather data. It carries a machine-readable code,
// a user-facing message and an optional underlying cause.
type WeatherError struct {
	// Code identifies the type of error for programmatic handling
	Code string

	// Message provides a human-readable error description
	Message string

	// Cause wraps an underlying error if applicable
	Cause error
}

// Error implements the error interface for WeatherError.
func (e *WeatherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *WeatherError) Unwrap() error {
	return e.Cause
}

// NewError creates a WeatherError with the given code and message.
func NewError(code, message string) *WeatherError {
	return &WeatherError{Code: code, Message: message}
}

// WrapError creates a WeatherError that records an underlying cause.
func WrapError(code, message string, cause error) *WeatherError {
	return &WeatherError{Code: code, Message: message, Cause: cause}
}

// ErrorCode extracts the domain error code from err, or empty if err is not
// a WeatherError.
func ErrorCode(err error) string {
	var we *WeatherError

	if errors.As(err, &we) {
		return we.Code
	}

	return ""
}

// UserMessage extracts the user-facing message from err. Unknown errors map
// to the generic service message so transport details never leak to the view.
func UserMessage(err error) string {
	var we *WeatherError

	if errors.As(err, &we) {
		return we.Message
	}

	return GenericServiceMessage
}
