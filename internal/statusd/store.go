package statusd

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// TransferRecord is one issued transfer and its current status. The JSON
// shape doubles as the "transfer" payload pushed over the stream.
type TransferRecord struct {
	TransferRequestID string `json:"transferRequestId"`
	MerchantID        string `json:"merchantId"`
	Amount            int64  `json:"amount"`
	Expiry            int64  `json:"expiry"`
	Status            string `json:"status"`

	Signature string `json:"-"`
}

// Store holds issued transfers in memory.
type Store struct {
	mu        sync.Mutex
	transfers map[string]*TransferRecord
}

func NewStore() *Store {
	return &Store{transfers: make(map[string]*TransferRecord)}
}

func (s *Store) Put(rec *TransferRecord) {
	s.mu.Lock()
	s.transfers[rec.TransferRequestID] = rec
	s.mu.Unlock()
}

// Get returns a copy of the record so callers never share mutable state.
func (s *Store) Get(id string) (TransferRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.transfers[id]
	if !ok {
		return TransferRecord{}, false
	}
	return *rec, true
}

func (s *Store) SetStatus(id, status string) {
	s.mu.Lock()
	if rec, ok := s.transfers[id]; ok {
		rec.Status = status
	}
	s.mu.Unlock()
}

// newToken returns 16 random bytes as hex.
func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
