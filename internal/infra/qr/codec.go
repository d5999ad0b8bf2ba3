package qr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"

	"telegram-loyalty-bot/internal/domain"
	"telegram-loyalty-bot/internal/domain/ports/adapter"
)

var _ adapter.QRCodec = (*Codec)(nil)

// Codec renders loyalty-card payloads as PNG QR images and reads them back
// from customer photos. Payload format: "<namespace>:<decimal telegram id>".
type Codec struct {
	namespace string
	size      int
	payloadRe *regexp.Regexp
}

func NewCodec(namespace string, size int) *Codec {
	if size <= 0 {
		size = 512
	}
	return &Codec{
		namespace: namespace,
		size:      size,
		payloadRe: regexp.MustCompile(`^` + regexp.QuoteMeta(namespace) + `:(\d+)$`),
	}
}

// Payload builds the canonical QR payload for one customer.
func (c *Codec) Payload(tgID int64) string {
	return fmt.Sprintf("%s:%d", c.namespace, tgID)
}

// ParsePayload extracts the customer id from a raw payload string.
func (c *Codec) ParsePayload(payload string) (int64, error) {
	m := c.payloadRe.FindStringSubmatch(payload)
	if m == nil {
		return 0, domain.ErrBadQRPayload
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id < 0 {
		return 0, domain.ErrBadQRPayload
	}
	return id, nil
}

func (c *Codec) Encode(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, c.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

func (c *Codec) Decode(ctx context.Context, imageBytes []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize image: %w", err)
	}

	reader := zxqr.NewQRCodeReader()
	res, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", fmt.Errorf("read qr: %w", err)
	}
	return res.GetText(), nil
}
