package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/domain"
	"github.com/climascope/climascope/internal/core/ports"
)

// DefaultRequestTimeout bounds the loading phase so a hanging upstream can
// never leave a session stuck in loading.
const DefaultRequestTimeout = 20 * time.Second

// Controller owns the fetch lifecycle for a single dashboard session:
// idle -> loading -> success|failure, re-entrant from both terminal phases.
//
// Only one request is authoritative at a time. A request issued while a
// prior one is still in flight supersedes it: each request takes a sequence
// token and a resolution is applied only if its token is still current, so
// a slow stale response can never overwrite a fresher result (last-issued
// wins, not last-resolved). Superseded requests are not aborted at the
// transport level, merely ignored on resolution.
type Controller struct {
	client  ports.AggregateClient
	logger  *zap.Logger
	timeout time.Duration

	mu        sync.Mutex
	phase     domain.Phase
	result    *domain.WeatherAggregate
	errMsg    string
	label     string
	lastQuery *domain.WeatherQuery
	seq       uint64
}

// NewController creates a session controller in the idle phase.
func NewController(client ports.AggregateClient, logger *zap.Logger, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Controller{
		client:  client,
		logger:  logger,
		timeout: timeout,
		phase:   domain.PhaseIdle,
	}
}

// Request transitions the session to loading and issues the query
// asynchronously. Entering loading clears any previous failure or result;
// the query is retained verbatim for retry. The returned token identifies
// this request for label delivery via SetLabel.
func (c *Controller) Request(query domain.WeatherQuery) uint64 {
	c.mu.Lock()

	c.seq++
	token := c.seq
	retained := query
	c.lastQuery = &retained
	c.phase = domain.PhaseLoading
	c.result = nil
	c.errMsg = ""

	c.mu.Unlock()

	c.logger.Info("weather request issued",
		zap.Uint64("seq", token),
		zap.Float64("lat", query.Coordinate.Lat),
		zap.Float64("lon", query.Coordinate.Lon),
		zap.String("date", query.Date),
		zap.String("source", string(query.Source)))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		aggregate, err := c.client.FetchAggregate(ctx, query)
		c.resolve(token, aggregate, err)
	}()

	return token
}

// Retry re-issues the last issued query verbatim. It reports false when the
// session has never issued a query.
func (c *Controller) Retry() bool {
	c.mu.Lock()

	if c.lastQuery == nil {
		c.mu.Unlock()
		return false
	}

	query := *c.lastQuery
	c.mu.Unlock()

	c.Request(query)

	return true
}

// SetLabel stores the display label for the request identified by token.
// Labels arrive from the geocoding task independently of the fetch lifecycle
// and never gate it, but they obey the same supersession rule as results: a
// label for a superseded request is dropped.
func (c *Controller) SetLabel(token uint64, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		c.logger.Debug("stale label ignored",
			zap.Uint64("seq", token),
			zap.Uint64("current", c.seq),
			zap.String("label", label))

		return
	}

	c.label = label
}

// Snapshot returns a copy of the current fetch state.
func (c *Controller) Snapshot() domain.FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := domain.FetchState{
		Phase:        c.phase,
		Result:       c.result,
		ErrorMessage: c.errMsg,
		Label:        c.label,
	}

	if c.lastQuery != nil {
		query := *c.lastQuery
		state.Query = &query
	}

	return state
}

// resolve applies a request completion. Completions carrying a stale token
// belong to a superseded request and are dropped.
func (c *Controller) resolve(token uint64, aggregate *domain.WeatherAggregate, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		c.logger.Debug("stale request resolution ignored",
			zap.Uint64("seq", token),
			zap.Uint64("current", c.seq))

		return
	}

	if err != nil {
		c.phase = domain.PhaseFailure
		c.result = nil
		c.errMsg = domain.UserMessage(err)

		c.logger.Warn("weather request failed",
			zap.Uint64("seq", token),
			zap.Error(err))

		return
	}

	c.phase = domain.PhaseSuccess
	c.result = aggregate
	c.errMsg = ""

	c.logger.Info("weather request resolved", zap.Uint64("seq", token))
}
