// Package statusd is a development stand-in for the Zenobia Pay status-push
// service. It issues transfers over REST and walks each one through a
// configured status sequence on its stream, so the tracker client can be
// exercised end to end without the production backend.
package statusd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zenobia-pay/client/internal/config"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
)

type Server struct {
	cfg      config.StatusdConfig
	store    *Store
	upgrader websocket.Upgrader
}

func NewServer(cfg config.StatusdConfig, store *Store) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/transfers", s.handleCreate)
	mux.HandleFunc("/transfers/", s.handleStream)
}

func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("statusd listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Amount    int64 `json:"amount"`
		Statement []struct {
			Name     string `json:"name"`
			Amount   int64  `json:"amount"`
			Quantity int    `json:"quantity"`
		} `json:"statementItems"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeFailure(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	id, err := newToken()
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	sig, err := newToken()
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	rec := &TransferRecord{
		TransferRequestID: id,
		MerchantID:        s.cfg.MerchantID,
		Amount:            req.Amount,
		Expiry:            time.Now().Add(15 * time.Minute).Unix(),
		Status:            s.initialStatus(),
		Signature:         sig,
	}
	s.store.Put(rec)
	log.Printf("issued transfer %s (amount %d)", rec.TransferRequestID, rec.Amount)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"transferRequestId": rec.TransferRequestID,
		"merchantId":        rec.MerchantID,
		"expiry":            rec.Expiry,
		"signature":         rec.Signature,
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Path shape: /transfers/{id}/ws
	rest := strings.TrimPrefix(r.URL.Path, "/transfers/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "ws" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	rec, ok := s.store.Get(parts[0])
	if !ok {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}
	if r.URL.Query().Get("token") != rec.Signature {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade error: %v", err)
		return
	}
	log.Printf("stream opened for transfer %s (%s)", rec.TransferRequestID, r.RemoteAddr)
	s.stream(conn, rec)
}

// stream pushes the remaining status sequence for the transfer, probing
// liveness with ping frames. Pong replies (any inbound frame, in fact)
// refresh the read deadline. The stream ends with a normal closure after
// the final status, or abnormally when fault injection cuts it short.
func (s *Server) stream(conn *websocket.Conn, rec TransferRecord) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			conn.SetReadDeadline(time.Now().Add(readTimeout))
		}
	}()

	feed := time.NewTicker(s.cfg.FeedInterval)
	defer feed.Stop()
	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	idx := s.statusIndex(rec.Status)
	sent := 0
	for {
		select {
		case <-feed.C:
			if idx >= len(s.cfg.Statuses) {
				s.closeNormally(conn, rec.TransferRequestID)
				return
			}
			rec.Status = s.cfg.Statuses[idx]
			idx++
			s.store.SetStatus(rec.TransferRequestID, rec.Status)
			if err := writeFrame(conn, map[string]any{"type": "status", "transfer": rec}); err != nil {
				log.Printf("stream write error for %s: %v", rec.TransferRequestID, err)
				return
			}
			sent++
			if s.cfg.DropAfter > 0 && sent >= s.cfg.DropAfter {
				// Simulated crash: no close frame, just a dead socket.
				log.Printf("dropping stream for %s after %d frames", rec.TransferRequestID, sent)
				return
			}
			if idx >= len(s.cfg.Statuses) {
				s.closeNormally(conn, rec.TransferRequestID)
				return
			}
		case <-ping.C:
			if err := writeFrame(conn, map[string]any{"type": "ping"}); err != nil {
				return
			}
		}
	}
}

func (s *Server) closeNormally(conn *websocket.Conn, id string) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "transfer settled"),
		time.Now().Add(writeTimeout),
	)
	log.Printf("stream for %s settled", id)
}

func (s *Server) initialStatus() string {
	if len(s.cfg.Statuses) == 0 {
		return ""
	}
	return s.cfg.Statuses[0]
}

// statusIndex returns the index of the first status still to be pushed.
// A reconnecting client resumes from the transfer's current status rather
// than replaying the whole sequence.
func (s *Server) statusIndex(current string) int {
	for i, st := range s.cfg.Statuses {
		if st == current {
			return i
		}
	}
	return 0
}

func writeFrame(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func writeFailure(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
