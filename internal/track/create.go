package track

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var createClient = &http.Client{Timeout: 10 * time.Second}

// StatementItem is one line of the itemized statement shown to the payer.
type StatementItem struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Quantity int    `json:"quantity,omitempty"`
}

// CreateRequest is the body of the create-transfer exchange. Amount is in
// minor currency units.
type CreateRequest struct {
	Amount    int64           `json:"amount"`
	Statement []StatementItem `json:"statementItems"`
}

// Transfer is the create-transfer response: the identity and authorization
// later handed to Track.
type Transfer struct {
	TransferRequestID string `json:"transferRequestId"`
	MerchantID        string `json:"merchantId"`
	Expiry            int64  `json:"expiry"`
	Signature         string `json:"signature"`
}

// CreateTransfer performs the single create-transfer exchange against the
// given endpoint. It has no retry policy; a non-success response is surfaced
// as an error carrying the server's message when one is provided.
func CreateTransfer(ctx context.Context, endpoint string, createReq CreateRequest) (*Transfer, error) {
	body, err := json.Marshal(createReq)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := createClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var fail struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&fail) == nil && fail.Message != "" {
			return nil, fmt.Errorf("create transfer: %s", fail.Message)
		}
		return nil, fmt.Errorf("create transfer failed (%d)", resp.StatusCode)
	}

	var t Transfer
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	return &t, nil
}
