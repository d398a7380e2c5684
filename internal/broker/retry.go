package broker

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-fx/internal/config"
	"github.com/rxtech-lab/argo-fx/internal/logger"
	"github.com/rxtech-lab/argo-fx/pkg/errors"
)

// IsConnectionError reports whether err carries a transport-level
// error code. Only these are worth retrying; everything else is a
// local or broker-side verdict.
func IsConnectionError(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeConnectionFailed,
		errors.ErrCodeConnectionTimeout,
		errors.ErrCodeNotConnected,
		errors.ErrCodeReconnectExhausted:
		return true
	default:
		return false
	}
}

// RetryPolicy runs connector operations under bounded exponential
// backoff. Non-connection errors abort immediately.
type RetryPolicy struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxAttempts     int
}

// NewRetryPolicy builds a policy with the given backoff bounds. An
// operation is attempted at most maxAttempts times in total.
func NewRetryPolicy(initialInterval, maxInterval time.Duration, maxAttempts int) RetryPolicy {
	return RetryPolicy{
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
		maxAttempts:     maxAttempts,
	}
}

// Run executes op, retrying connection errors with exponential backoff
// until the attempt budget or the context runs out.
func (p RetryPolicy) Run(ctx context.Context, op func() error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.initialInterval
	expo.MaxInterval = p.maxInterval

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}

		if !IsConnectionError(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	retries := uint64(0)
	if p.maxAttempts > 1 {
		retries = uint64(p.maxAttempts - 1)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, retries), ctx)

	return backoff.Retry(wrapped, policy)
}

// Status is the supervisor's observable connection state.
type Status struct {
	Connected bool
	// Attempts is the count of reconnect attempts since the last
	// successful connect.
	Attempts int
	// LastError is the most recent connect failure, nil when healthy.
	LastError error
	// LastConnectedAt is the time of the last successful connect.
	LastConnectedAt time.Time
}

// Supervisor owns the reconnect loop around a Connector. Lifecycle and
// engine code query its status instead of probing the transport
// directly, and reconnection never blocks reads of state cached
// elsewhere.
type Supervisor struct {
	connector Connector
	config    config.ConnectorConfig
	logger    *logger.Logger

	mu     sync.RWMutex
	status Status
}

// NewSupervisor wraps a connector with the reconnect policy.
func NewSupervisor(connector Connector, cfg config.ConnectorConfig, log *logger.Logger) *Supervisor {
	return &Supervisor{
		connector: connector,
		config:    cfg,
		logger:    log,
	}
}

// Connector returns the supervised transport.
func (s *Supervisor) Connector() Connector {
	return s.connector
}

// Status returns the current connection state.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// EnsureConnected returns immediately when the transport is usable,
// otherwise reconnects with exponential backoff up to the configured
// attempt cap.
func (s *Supervisor) EnsureConnected(ctx context.Context) error {
	if s.connector.IsConnected() {
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.config.ReconnectInitialInterval
	expo.MaxInterval = s.config.ReconnectMaxInterval

	retries := uint64(0)
	if s.config.MaxReconnectAttempts > 1 {
		retries = uint64(s.config.MaxReconnectAttempts - 1)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, retries), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++

		connectCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
		defer cancel()

		if err := s.connector.Connect(connectCtx); err != nil {
			s.recordFailure(attempt, err)
			s.logger.Warn("reconnect attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)

			return err
		}

		return nil
	}, policy)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeReconnectExhausted, err,
			"reconnect exhausted after %d attempts", attempt)
	}

	s.recordConnected()
	s.logger.Info("connector ready", zap.Int("attempts", attempt))

	return nil
}

func (s *Supervisor) recordFailure(attempt int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Connected = false
	s.status.Attempts = attempt
	s.status.LastError = err
}

func (s *Supervisor) recordConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Connected = true
	s.status.Attempts = 0
	s.status.LastError = nil
	s.status.LastConnectedAt = time.Now()
}
