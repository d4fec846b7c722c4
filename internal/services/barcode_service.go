package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/models"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	SymbologyCode128 = "code128"
	SymbologyQR      = "qr"

	captionBand = 20
)

type BarcodeService struct {
	cfg config.BarcodeConfig
}

func NewBarcodeService(cfg config.BarcodeConfig) *BarcodeService {
	if cfg.Symbology == "" {
		cfg.Symbology = SymbologyCode128
	}
	if cfg.ModuleWidth <= 0 {
		cfg.ModuleWidth = 1
	}
	if cfg.BarHeight <= 0 {
		cfg.BarHeight = 100
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = 256
	}
	return &BarcodeService{cfg: cfg}
}

func (s *BarcodeService) Symbology() string {
	return s.cfg.Symbology
}

// Render encodes a payload and returns it as an immutable PNG barcode
func (s *BarcodeService) Render(payload string) (models.RenderedBarcode, error) {
	var symbol image.Image
	var err error

	switch s.cfg.Symbology {
	case SymbologyQR:
		symbol, err = s.encodeQR(payload)
	case SymbologyCode128:
		symbol, err = s.encodeCode128(payload)
	default:
		err = fmt.Errorf("%w: unsupported symbology %q", models.ErrEncodingFailure, s.cfg.Symbology)
	}
	if err != nil {
		return models.RenderedBarcode{}, err
	}

	img := s.compose(symbol, payload)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return models.RenderedBarcode{}, fmt.Errorf("%w: failed to encode barcode as PNG: %v", models.ErrEncodingFailure, err)
	}

	return models.NewRenderedBarcode(payload, buf.Bytes()), nil
}

// RenderBatch renders every payload in order, stopping at the first failure
func (s *BarcodeService) RenderBatch(payloads []string, createdAt time.Time) (*models.ExportBatch, error) {
	batch := models.NewExportBatch(createdAt)
	for i, payload := range payloads {
		rendered, err := s.Render(payload)
		if err != nil {
			return nil, fmt.Errorf("guest %d: %w", i+1, err)
		}
		if err := batch.Add(rendered); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func (s *BarcodeService) encodeCode128(payload string) (image.Image, error) {
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEncodingFailure, err)
	}

	// Integer module width keeps every bar the same pixel width
	width := bc.Bounds().Dx() * s.cfg.ModuleWidth
	scaled, err := barcode.Scale(bc, width, s.cfg.BarHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scale barcode: %v", models.ErrEncodingFailure, err)
	}
	return scaled, nil
}

func (s *BarcodeService) encodeQR(payload string) (image.Image, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create QR code: %v", models.ErrEncodingFailure, err)
	}
	return q.Image(s.cfg.QRSize), nil
}

// compose places the symbol on a white canvas with a quiet zone and caption
func (s *BarcodeService) compose(symbol image.Image, caption string) *image.Gray {
	quiet := s.cfg.QuietZone * s.cfg.ModuleWidth
	padY := 4 * s.cfg.ModuleWidth

	bounds := symbol.Bounds()
	width := bounds.Dx() + 2*quiet
	if textWidth := len(caption)*basicfont.Face7x13.Advance + 2*quiet; s.cfg.ShowText && textWidth > width {
		width = textWidth
	}
	height := padY + bounds.Dy() + padY
	if s.cfg.ShowText {
		height += captionBand
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	offsetX := (width - bounds.Dx()) / 2
	target := image.Rect(offsetX, padY, offsetX+bounds.Dx(), padY+bounds.Dy())
	draw.Draw(img, target, symbol, bounds.Min, draw.Src)

	if s.cfg.ShowText {
		textX := (width - len(caption)*basicfont.Face7x13.Advance) / 2
		baseline := padY + bounds.Dy() + basicfont.Face7x13.Ascent + 4
		drawText(img, caption, textX, baseline, color.Black)
	}
	return img
}

// drawText draws text with the built-in 7x13 face, y is the baseline
func drawText(img draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
