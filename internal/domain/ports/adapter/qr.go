package adapter

import "context"

// QRCodec builds loyalty-card payloads and converts them to and from PNG QR
// images. Decode returns an error when no QR code is readable; it never
// panics on junk input.
type QRCodec interface {
	// Payload builds the canonical payload for one customer.
	Payload(tgID int64) string
	// ParsePayload extracts the customer id from a raw payload string.
	ParsePayload(payload string) (int64, error)
	Encode(payload string) ([]byte, error)
	Decode(ctx context.Context, image []byte) (string, error)
}
