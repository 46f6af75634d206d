package track

import (
	"time"

	"github.com/gorilla/websocket"
)

// DefaultStatusHost is the production status-push service.
const DefaultStatusHost = "status.zenobiapay.com"

const (
	defaultBackoffBase = 1 * time.Second
	defaultBackoffCap  = 30 * time.Second
	defaultMaxAttempts = 6

	writeTimeout = 10 * time.Second
)

// Config parameterizes a session. Host selection and retry policy are
// explicit configuration rather than package state so test and production
// deployments differ only in the values passed here.
type Config struct {
	// StatusHost is the host[:port] of the status-push service.
	StatusHost string

	// Secure selects wss when true, ws otherwise.
	Secure bool

	// BackoffBase is the delay before the first reconnect attempt. Each
	// further attempt doubles it, up to BackoffCap.
	BackoffBase time.Duration

	// BackoffCap bounds the reconnect delay.
	BackoffCap time.Duration

	// MaxAttempts bounds consecutive failed attempts before the session
	// gives up and reports ErrRetriesExhausted.
	MaxAttempts int

	// Dialer overrides the WebSocket dialer. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

func (c Config) withDefaults() Config {
	if c.StatusHost == "" {
		c.StatusHost = DefaultStatusHost
		c.Secure = true
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = defaultBackoffCap
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	return c
}

// backoffDelay returns the delay before reconnect attempt k (1-based):
// min(base * 2^(k-1), limit).
func backoffDelay(base, limit time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	if d > limit {
		return limit
	}
	return d
}
