package track

import (
	"encoding/json"

	qrcode "github.com/skip2/go-qrcode"
)

// QR renders the transfer's scan payload as a PNG of size x size pixels.
// The payload is the transfer identity a wallet app needs to complete the
// payment.
func (t *Transfer) QR(size int) ([]byte, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, size)
}
