package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

func TestParsePayload(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		cc := ParsePayload("DT123456*0000123*2026-01-03*12:34:56*45.50")
		if cc == nil {
			t.Fatal("ParsePayload() = nil")
		}
		if cc.FPNumber != "DT123456" {
			t.Errorf("FPNumber = %q", cc.FPNumber)
		}
		if cc.ReceiptNumber != "0000123" {
			t.Errorf("ReceiptNumber = %q", cc.ReceiptNumber)
		}
		if cc.Date != "2026-01-03" {
			t.Errorf("Date = %q", cc.Date)
		}
		if cc.Time != "12:34:56" {
			t.Errorf("Time = %q", cc.Time)
		}
		if cc.Amount == nil || *cc.Amount != 45.50 {
			t.Errorf("Amount = %v, want 45.50", cc.Amount)
		}
	})

	t.Run("payload without amount", func(t *testing.T) {
		cc := ParsePayload("DT123456*0000123*2026-01-03*12:34:56")
		if cc == nil {
			t.Fatal("ParsePayload() = nil")
		}
		if cc.Amount != nil {
			t.Errorf("Amount = %v, want nil", *cc.Amount)
		}
	})

	t.Run("too few parts", func(t *testing.T) {
		if cc := ParsePayload("https://example.com/not-a-receipt"); cc != nil {
			t.Errorf("ParsePayload() = %+v, want nil", cc)
		}
	})

	t.Run("unparseable amount", func(t *testing.T) {
		if cc := ParsePayload("DT*123*2026-01-03*12:00*abc"); cc != nil {
			t.Errorf("ParsePayload() = %+v, want nil", cc)
		}
	})
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := "DT123456*0000123*2026-01-03*12:34:56*45.50"

	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	if err != nil {
		t.Fatalf("encoding QR: %v", err)
	}

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}

	cc := Decode(buf.Bytes())
	if cc == nil {
		t.Fatal("Decode() = nil for image with QR code")
	}
	if cc.Amount == nil || *cc.Amount != 45.50 {
		t.Errorf("Amount = %v, want 45.50", cc.Amount)
	}
	if cc.FPNumber != "DT123456" {
		t.Errorf("FPNumber = %q", cc.FPNumber)
	}
}

func TestDecodeNonImage(t *testing.T) {
	if cc := Decode([]byte("definitely not an image")); cc != nil {
		t.Errorf("Decode() = %+v, want nil", cc)
	}
}

func TestDecodeImageWithoutQR(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}

	if cc := Decode(buf.Bytes()); cc != nil {
		t.Errorf("Decode() = %+v, want nil", cc)
	}
}
