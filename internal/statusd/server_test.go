package statusd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zenobia-pay/client/internal/config"
	"github.com/zenobia-pay/client/internal/track"
)

func testServer(t *testing.T, cfg config.StatusdConfig) (*httptest.Server, *Store) {
	t.Helper()
	if cfg.MerchantID == "" {
		cfg.MerchantID = "m1"
	}
	if cfg.FeedInterval == 0 {
		cfg.FeedInterval = 10 * time.Millisecond
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = time.Hour
	}
	if cfg.Statuses == nil {
		cfg.Statuses = []string{"created", "pending", "completed"}
	}
	store := NewStore()
	mux := http.NewServeMux()
	NewServer(cfg, store).SetupRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func createTransfer(t *testing.T, srv *httptest.Server, amount int64) (id, signature string) {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"amount":         amount,
		"statementItems": []map[string]any{{"name": "Coffee", "amount": amount, "quantity": 1}},
	})
	resp, err := http.Post(srv.URL+"/api/transfers", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d, want 200", resp.StatusCode)
	}
	var created struct {
		TransferRequestID string `json:"transferRequestId"`
		MerchantID        string `json:"merchantId"`
		Expiry            int64  `json:"expiry"`
		Signature         string `json:"signature"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.TransferRequestID == "" || created.Signature == "" {
		t.Fatalf("create response missing identifiers: %+v", created)
	}
	if created.MerchantID != "m1" {
		t.Errorf("merchantId = %q, want m1", created.MerchantID)
	}
	return created.TransferRequestID, created.Signature
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{})

	resp, err := http.Post(srv.URL+"/api/transfers", "application/json", strings.NewReader(`{"amount":0}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var fail struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil || fail.Message == "" {
		t.Errorf("400 response should carry a message, got %q (%v)", fail.Message, err)
	}
}

func TestStreamRejectsBadToken(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{})
	id, _ := createTransfer(t, srv, 1000)

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsBase+"/transfers/"+id+"/ws?token=wrong", nil)
	if err == nil {
		t.Fatal("dial with bad token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %+v, want 401", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(wsBase+"/transfers/nope/ws?token=x", nil)
	if err == nil {
		t.Fatal("dial for unknown transfer should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %+v, want 404", resp)
	}
}

func TestStreamPushesSequenceThenClosesNormally(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{})
	id, sig := createTransfer(t, srv, 1000)

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/transfers/"+id+"/ws?token="+sig, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	want := []string{"created", "pending", "completed"}
	for _, wantStatus := range want {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var frame struct {
			Type     string `json:"type"`
			Transfer struct {
				TransferRequestID string `json:"transferRequestId"`
				Status            string `json:"status"`
			} `json:"transfer"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("frame not JSON: %q", data)
		}
		if frame.Type != "status" || frame.Transfer.Status != wantStatus {
			t.Errorf("frame = %s/%s, want status/%s", frame.Type, frame.Transfer.Status, wantStatus)
		}
		if frame.Transfer.TransferRequestID != id {
			t.Errorf("transferRequestId = %q, want %q", frame.Transfer.TransferRequestID, id)
		}
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("final read error = %v, want normal closure", err)
	}
}

func TestStreamSendsPings(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{
		FeedInterval: time.Hour,
		PingInterval: 10 * time.Millisecond,
	})
	id, sig := createTransfer(t, srv, 1000)

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/transfers/"+id+"/ws?token="+sig, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "ping" {
		t.Errorf("first frame = %q, want a ping", data)
	}

	// A pong reply must be accepted without dropping the stream.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`)); err != nil {
		t.Fatalf("write pong: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Errorf("stream dropped after pong: %v", err)
	}
}

func TestDropAfterCutsStreamAbnormally(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{DropAfter: 1})
	id, sig := createTransfer(t, srv, 1000)

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/transfers/"+id+"/ws?token="+sig, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("first status frame: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("stream should have dropped")
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Error("drop should not look like a normal closure")
	}
}

// TestTrackerEndToEnd drives the real client against statusd: create, track,
// follow the full status sequence, and observe the normal closure without a
// reconnect attempt.
func TestTrackerEndToEnd(t *testing.T) {
	srv, _ := testServer(t, config.StatusdConfig{})

	session := track.NewSession(track.Config{
		StatusHost:  strings.TrimPrefix(srv.URL, "http://"),
		BackoffBase: 10 * time.Millisecond,
		BackoffCap:  100 * time.Millisecond,
		MaxAttempts: 6,
	})

	statuses := make(chan string, 16)
	conns := make(chan bool, 16)
	errs := make(chan error, 16)
	session.OnStatus(func(u track.TransferUpdate) { statuses <- u.Status })
	session.OnConnection(func(c bool) { conns <- c })
	session.OnError(func(err error) { errs <- err })

	transfer, err := session.CreateAndTrack(t.Context(), srv.URL+"/api/transfers", track.CreateRequest{
		Amount:    1000,
		Statement: []track.StatementItem{{Name: "Coffee", Amount: 1000, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateAndTrack() error: %v", err)
	}
	defer session.Disconnect()
	if transfer.TransferRequestID == "" || transfer.Signature == "" {
		t.Fatalf("transfer missing identifiers: %+v", transfer)
	}

	waitBool := func(want bool) {
		t.Helper()
		select {
		case got := <-conns:
			if got != want {
				t.Fatalf("connection = %v, want %v", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for connection=%v", want)
		}
	}
	waitBool(true)

	var seen []string
	for len(seen) < 3 {
		select {
		case st := <-statuses:
			seen = append(seen, st)
		case err := <-errs:
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, statuses so far: %v", seen)
		}
	}
	want := []string{"created", "pending", "completed"}
	for i, st := range want {
		if seen[i] != st {
			t.Fatalf("statuses = %v, want %v", seen, want)
		}
	}

	// Settled stream closes normally: disconnected, no retry, no error.
	waitBool(false)
	select {
	case got := <-conns:
		t.Errorf("unexpected reconnect after settlement: %v", got)
	case err := <-errs:
		t.Errorf("unexpected error after settlement: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
}
