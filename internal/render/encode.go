package render

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// EncodeQRPNG encodes the payload as a QR symbol rendered to PNG bytes at
// the given pixel size. Medium error correction keeps codes scannable on
// small printed badges.
func EncodeQRPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("qr payload is empty")
	}
	if size < 32 {
		size = 32
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// EncodeBarcodePNG encodes the value as a Code 128 symbol scaled to the
// given pixel box and rendered to PNG bytes. Only the bars are drawn; the
// human-readable value is never overlaid.
func EncodeBarcodePNG(value string, width, height int) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("barcode value is empty")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("barcode box must be positive, got %dx%d", width, height)
	}

	code, err := code128.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}

	// Scaling fails when the box is narrower than the symbol; widen to the
	// minimum rather than dropping the component.
	minWidth := code.Bounds().Dx()
	if width < minWidth {
		width = minWidth
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale code128: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes for inline embedding, so print documents carry
// their images with no live script or network dependency.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
