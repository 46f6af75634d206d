package track

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Inbound frames are JSON objects discriminated by "type". The service
// pushes status and error messages and probes liveness with ping; the only
// traffic the client originates after the handshake is the pong reply.
const (
	msgStatus = "status"
	msgError  = "error"
	msgPing   = "ping"
	msgPong   = "pong"
)

type envelope struct {
	Type     string          `json:"type"`
	Transfer json.RawMessage `json:"transfer,omitempty"`
	Message  *string         `json:"message,omitempty"`
}

// TransferUpdate is a pushed transfer status. Raw carries the transfer
// object verbatim; Status is the only field the protocol requires of it.
type TransferUpdate struct {
	Status string
	Raw    json.RawMessage
}

// handleFrame classifies one inbound text frame and routes it. Malformed
// frames are reported through the error observer and otherwise ignored; they
// never tear down the connection.
func (c *controller) handleFrame(conn *websocket.Conn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.emit.emitError(ErrParseMessage)
		return
	}

	switch env.Type {
	case msgStatus:
		update, ok := transferUpdate(env.Transfer)
		if !ok {
			c.emit.emitError(ErrParseMessage)
			return
		}
		c.emit.emitStatus(update)

	case msgError:
		if env.Message == nil {
			c.emit.emitError(ErrParseMessage)
			return
		}
		c.emit.emitError(&ServerError{Message: *env.Message})

	case msgPing:
		if err := c.writePong(conn); err != nil {
			c.emit.emitError(fmt.Errorf("send pong: %w", err))
		}

	default:
		c.emit.emitError(ErrParseMessage)
	}
}

func transferUpdate(raw json.RawMessage) (TransferUpdate, bool) {
	if len(raw) == 0 {
		return TransferUpdate{}, false
	}
	var probe struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Status == nil {
		return TransferUpdate{}, false
	}
	return TransferUpdate{Status: *probe.Status, Raw: raw}, true
}

func (c *controller) writePong(conn *websocket.Conn) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
}
