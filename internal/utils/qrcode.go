// Package utils provides small helpers shared across handlers.
package utils

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyQRContent is returned when there is nothing to encode.
var ErrEmptyQRContent = errors.New("empty qr content")

// BookingQRPNG renders a booking reference as a PNG QR code.  The QR
// carries only the opaque reference; whoever scans it still has to
// resolve the booking through the API, so no sensitive data is
// embedded.  Medium error correction matches common scanner defaults.
func BookingQRPNG(reference string, size int) ([]byte, error) {
	if reference == "" {
		return nil, ErrEmptyQRContent
	}
	if size <= 0 {
		size = 300
	}
	qr, err := qrcode.New(reference, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qr.PNG(size)
}
