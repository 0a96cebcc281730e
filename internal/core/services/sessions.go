package services

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/climascope/climascope/internal/core/ports"
)

// SessionRegistry hands out one Controller per session ID. Idle sessions
// expire after the configured TTL; state is purely in-memory and lost on
// restart, which is the intended lifetime.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	client   ports.AggregateClient
	logger   *zap.Logger
	timeout  time.Duration
}

// NewSessionRegistry creates a registry whose controllers use the given
// aggregate client and per-request timeout.
func NewSessionRegistry(client ports.AggregateClient, logger *zap.Logger, sessionTTL, requestTimeout time.Duration) *SessionRegistry {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}

	return &SessionRegistry{
		sessions: gocache.New(sessionTTL, 10*time.Minute),
		client:   client,
		logger:   logger,
		timeout:  requestTimeout,
	}
}

// Get returns the controller for the session, creating it on first use and
// refreshing its expiry on every access.
func (r *SessionRegistry) Get(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.sessions.Get(sessionID); found {
		r.sessions.SetDefault(sessionID, v)
		return v.(*Controller)
	}

	controller := NewController(r.client, r.logger.With(zap.String("session_id", sessionID)), r.timeout)
	r.sessions.SetDefault(sessionID, controller)

	return controller
}
