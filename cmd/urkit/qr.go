package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v2"
)

const qrImageSize = 512

var qrFlag = cli.StringFlag{
	Name:  "qr",
	Usage: "also write the CBOR record as a QR code PNG to this file",
}

// writeQRCode encodes data as uppercase hex, which fits the QR alphanumeric
// mode.
func writeQRCode(path string, data []byte) error {
	qr, err := qrcode.New(strings.ToUpper(hex.EncodeToString(data)), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(qrImageSize)
	if err != nil {
		return fmt.Errorf("failed to generate PNG: %w", err)
	}

	if err := os.WriteFile(path, png, 0644); err != nil {
		return err
	}
	log.Debugf("QR code written to %s", path)
	return nil
}
