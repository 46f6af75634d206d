// Package track maintains the streaming status connection for a single
// Zenobia Pay transfer. A Session owns one connection controller that keeps
// the stream alive across drops with capped exponential backoff and routes
// pushed messages to the caller's observers.
package track

import (
	"context"
	"errors"
	"sync"
)

// Sentinel errors reported through the error observer or returned from the
// public operations.
var (
	// ErrMissingCredentials is reported when a connection is requested
	// without both a transfer id and a signature.
	ErrMissingCredentials = errors.New("transfer id and signature are required")

	// ErrSessionClosed is returned when tracking is requested on a session
	// that has already been disconnected. Sessions are single-use.
	ErrSessionClosed = errors.New("session is disconnected")

	// ErrParseMessage is reported when an inbound frame is not valid JSON
	// or does not match any known message shape.
	ErrParseMessage = errors.New("failed to parse message")

	// ErrRetriesExhausted is reported once when the automatic reconnect
	// budget runs out. No further attempts are made until Track is called
	// again.
	ErrRetriesExhausted = errors.New("reconnect attempts exhausted")
)

// ServerError carries an error message pushed by the status service.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// Session tracks the lifecycle of one payment transfer. It holds the
// transfer credentials and the registered observers, and owns the connection
// controller for the stream. A Session is live until Disconnect is called;
// afterwards it cannot be reused.
type Session struct {
	mu           sync.Mutex
	onStatus     func(TransferUpdate)
	onError      func(error)
	onConnection func(bool)

	ctrl *controller
}

// NewSession creates a session with the given configuration. Zero-value
// backoff fields fall back to the package defaults.
func NewSession(cfg Config) *Session {
	s := &Session{}
	s.ctrl = newController(cfg.withDefaults(), s)
	return s
}

// OnStatus registers the status observer. Registering replaces any previous
// observer; a nil fn removes it.
func (s *Session) OnStatus(fn func(TransferUpdate)) {
	s.mu.Lock()
	s.onStatus = fn
	s.mu.Unlock()
}

// OnError registers the error observer. Registering replaces any previous
// observer; a nil fn removes it.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// OnConnection registers the connection observer, invoked with true on each
// successful open and false on each closure. Registering replaces any
// previous observer; a nil fn removes it.
func (s *Session) OnConnection(fn func(bool)) {
	s.mu.Lock()
	s.onConnection = fn
	s.mu.Unlock()
}

// Track starts (or resumes) tracking the transfer identified by transferID,
// authorized by signature. It returns immediately; the outcome of the
// connection attempt is delivered through the observers. Missing credentials
// are reported through the error observer and no attempt is made.
//
// Calling Track while a connection is open tears the old connection down
// first. Calling Track after Disconnect returns ErrSessionClosed.
func (s *Session) Track(transferID, signature string) error {
	if err := s.ctrl.setCredentials(transferID, signature); err != nil {
		return err
	}
	go s.ctrl.connect()
	return nil
}

// CreateAndTrack creates a transfer against the given endpoint and starts
// tracking it. The created transfer is returned so the caller can render
// its scan payload.
func (s *Session) CreateAndTrack(ctx context.Context, endpoint string, req CreateRequest) (*Transfer, error) {
	t, err := CreateTransfer(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}
	if err := s.Track(t.TransferRequestID, t.Signature); err != nil {
		return nil, err
	}
	return t, nil
}

// Disconnect closes the stream with the normal-closure code, cancels any
// pending reconnect and clears the stored credentials. It is irreversible:
// no automatic retry fires afterwards and the session cannot be reused.
func (s *Session) Disconnect() {
	s.ctrl.disconnect()
}

// Connected reports whether the stream is currently open.
func (s *Session) Connected() bool {
	return s.ctrl.connected()
}

// ReconnectAttempts returns the number of consecutive failed attempts since
// the last successful open.
func (s *Session) ReconnectAttempts() int {
	return s.ctrl.reconnectAttempts()
}

func (s *Session) emitStatus(u TransferUpdate) {
	s.mu.Lock()
	fn := s.onStatus
	s.mu.Unlock()
	if fn != nil {
		fn(u)
	}
}

func (s *Session) emitError(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (s *Session) emitConnection(connected bool) {
	s.mu.Lock()
	fn := s.onConnection
	s.mu.Unlock()
	if fn != nil {
		fn(connected)
	}
}
