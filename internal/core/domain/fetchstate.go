package domain

// Phase enumerates the fetch lifecycle of a dashboard session.
// Exactly one phase is live per session at any moment.
type Phase string

const (
	// PhaseIdle means no request has been issued yet
	PhaseIdle Phase = "idle"

	// PhaseLoading means a request is in flight
	PhaseLoading Phase = "loading"

	// PhaseSuccess means the latest issued request resolved with data
	PhaseSuccess Phase = "success"

	// PhaseFailure means the latest issued request resolved with an error
	PhaseFailure Phase = "failure"
)

// FetchState is a point-in-time snapshot of a session's fetch lifecycle.
// Result is set only in the success phase and ErrorMessage only in the
// failure phase; Query always reflects the last issued request so a retry
// can re-issue it verbatim.
type FetchState struct {
	Phase        Phase
	Result       *WeatherAggregate
	ErrorMessage string
	Query        *WeatherQuery
	Label        string
}
