package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(confirmationCode string) ([]byte, error)
}

type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(confirmationCode string) ([]byte, error) {
	qrData := fmt.Sprintf("%s/reservations/confirm?code=%s", g.BaseURL, confirmationCode)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}
