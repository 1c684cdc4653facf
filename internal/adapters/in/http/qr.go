package http

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// qrSize is the edge length of rendered codes, in pixels.
const qrSize = 256

func renderQR(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}
