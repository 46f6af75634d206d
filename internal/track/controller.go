package track

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// controller drives the connection lifecycle for one session: it owns at
// most one live connection and at most one pending retry timer, and is the
// only component that closes the connection or cancels the timer.
type controller struct {
	cfg  Config
	emit *Session

	writeMu sync.Mutex // serialises all conn writes (pong, close)

	mu         sync.Mutex
	transferID string
	signature  string
	conn       *websocket.Conn
	retryTimer *time.Timer
	attempts   int
	terminal   bool
}

func newController(cfg Config, emit *Session) *controller {
	return &controller{cfg: cfg, emit: emit}
}

func (c *controller) setCredentials(transferID, signature string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return ErrSessionClosed
	}
	c.transferID = transferID
	c.signature = signature
	return nil
}

// connect opens a new stream using the stored credentials. Any prior
// connection is torn down and its closure reported first, and any pending
// retry is cancelled so the attempt in flight is the only one.
func (c *controller) connect() {
	c.mu.Lock()
	if c.terminal {
		c.mu.Unlock()
		return
	}
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	old := c.conn
	c.conn = nil
	transferID, signature := c.transferID, c.signature
	c.mu.Unlock()

	if old != nil {
		old.Close()
		c.emit.emitConnection(false)
	}

	if transferID == "" || signature == "" {
		c.emit.emitError(ErrMissingCredentials)
		return
	}

	endpoint, err := c.endpoint(transferID, signature)
	if err != nil {
		// Setup failure: nothing was opened, so nothing retries.
		c.emit.emitError(err)
		return
	}

	conn, _, err := c.cfg.Dialer.Dial(endpoint, nil)
	if err != nil {
		c.emit.emitError(fmt.Errorf("dial status stream: %w", err))
		c.retryAfterFailure()
		return
	}

	c.mu.Lock()
	if c.terminal {
		// Disconnect raced the dial; the session is already closed.
		c.mu.Unlock()
		conn.Close()
		return
	}
	stale := c.conn
	c.conn = conn
	c.attempts = 0
	c.mu.Unlock()

	if stale != nil {
		// Another connect landed while this dial was in flight; only one
		// connection may survive.
		stale.Close()
		c.emit.emitConnection(false)
	}
	c.emit.emitConnection(true)
	go c.readLoop(conn)
}

// endpoint builds the stream URL: <scheme>://<host>/transfers/<id>/ws?token=<sig>.
func (c *controller) endpoint(transferID, signature string) (string, error) {
	if c.cfg.StatusHost == "" {
		return "", fmt.Errorf("status host not configured")
	}
	scheme := "ws"
	if c.cfg.Secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     c.cfg.StatusHost,
		Path:     "/transfers/" + transferID + "/ws",
		RawQuery: url.Values{"token": {signature}}.Encode(),
	}
	return u.String(), nil
}

func (c *controller) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, err)
			return
		}
		c.handleFrame(conn, data)
	}
}

// handleClose runs when a connection's read loop ends. Closures of
// superseded connections are ignored; the live connection's closure is
// reported once and, for abnormal close codes, feeds the retry path.
func (c *controller) handleClose(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn {
		// Already torn down by connect or disconnect, which reported it.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()
	conn.Close()

	c.emit.emitConnection(false)
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return
	}
	c.retryAfterFailure()
}

// retryAfterFailure increments the attempt counter and schedules the next
// connect, replacing any pending timer so at most one retry is ever queued.
// Once the counter reaches the configured maximum the session stays closed
// and ErrRetriesExhausted is reported.
func (c *controller) retryAfterFailure() {
	c.mu.Lock()
	if c.terminal {
		c.mu.Unlock()
		return
	}
	c.attempts++
	if c.attempts >= c.cfg.MaxAttempts {
		c.mu.Unlock()
		c.emit.emitError(ErrRetriesExhausted)
		return
	}
	delay := backoffDelay(c.cfg.BackoffBase, c.cfg.BackoffCap, c.attempts)
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	c.retryTimer = time.AfterFunc(delay, c.connect)
	c.mu.Unlock()
}

// disconnect is the terminal transition: it cancels the pending retry,
// closes the live connection with the normal-closure code and clears the
// credentials so no later callback can reopen the session.
func (c *controller) disconnect() {
	c.mu.Lock()
	if c.terminal {
		c.mu.Unlock()
		return
	}
	c.terminal = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.transferID, c.signature = "", ""
	c.mu.Unlock()

	if conn == nil {
		return
	}
	c.writeMu.Lock()
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
	c.writeMu.Unlock()
	conn.Close()
	c.emit.emitConnection(false)
}

func (c *controller) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *controller) reconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}
