// Package qr decodes the machine-readable fiscal payload printed on
// Bulgarian receipts. It is comparison-only: the decoded amount is used
// to cross-check the AI-extracted total, never to replace it.
package qr

import (
	"bytes"
	"image"
	"strconv"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	_ "image/jpeg"
	_ "image/png"

	_ "github.com/gen2brain/heic"
)

// CrossCheck is the parsed fiscal payload. Amount is nil when the
// payload did not carry one.
type CrossCheck struct {
	FPNumber      string   `json:"fp_number"`
	ReceiptNumber string   `json:"receipt_number"`
	Date          string   `json:"date"`
	Time          string   `json:"time,omitempty"`
	Amount        *float64 `json:"amount"`
}

// Decode locates a QR code in the receipt image and parses its fiscal
// payload. Every failure mode returns nil: absence of a cross-check
// must never block the pipeline.
func Decode(imageBytes []byte) *CrossCheck {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return nil
	}

	return ParsePayload(result.GetText())
}

// ParsePayload parses the star-separated fiscal receipt payload
// FP*RECEIPT*DATE*TIME*AMOUNT. Returns nil for unrecognized schemas.
func ParsePayload(text string) *CrossCheck {
	parts := strings.Split(text, "*")
	if len(parts) < 4 {
		return nil
	}

	cc := &CrossCheck{
		FPNumber:      parts[0],
		ReceiptNumber: parts[1],
		Date:          parts[2],
		Time:          parts[3],
	}

	if len(parts) > 4 {
		amount, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err != nil {
			return nil
		}
		cc.Amount = &amount
	}

	return cc
}
