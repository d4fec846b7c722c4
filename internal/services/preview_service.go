package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/models"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const previewLabelHeight = 16

var (
	labelFaceOnce sync.Once
	labelFace     font.Face
	labelFaceErr  error
)

// loadLabelFace parses Go Regular once
func loadLabelFace() (font.Face, error) {
	labelFaceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			labelFaceErr = err
			return
		}
		labelFace, labelFaceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    10,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return labelFace, labelFaceErr
}

type PreviewService struct {
	cfg config.PreviewConfig
}

func NewPreviewService(cfg config.PreviewConfig) *PreviewService {
	if cfg.PerRow <= 0 {
		cfg.PerRow = 5
	}
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = 200
	}
	if cfg.ThumbHeight <= 0 {
		cfg.ThumbHeight = 100
	}
	return &PreviewService{cfg: cfg}
}

// SheetSize returns the pixel size of the contact sheet for count barcodes
func (s *PreviewService) SheetSize(count int) (int, int) {
	if count <= 0 {
		return 0, 0
	}
	cols := min(count, s.cfg.PerRow)
	rows := (count + s.cfg.PerRow - 1) / s.cfg.PerRow
	return cols * s.cellWidth(), rows * s.cellHeight()
}

func (s *PreviewService) cellWidth() int {
	return s.cfg.ThumbWidth + 2*s.cfg.Padding
}

func (s *PreviewService) cellHeight() int {
	return s.cfg.ThumbHeight + previewLabelHeight + 2*s.cfg.Padding
}

// Sheet renders a PNG grid of thumbnails with their payloads underneath
func (s *PreviewService) Sheet(batch *models.ExportBatch) ([]byte, error) {
	if batch.IsEmpty() {
		return nil, models.ErrEmptyBatch
	}

	face, err := loadLabelFace()
	if err != nil {
		return nil, fmt.Errorf("failed to load label font: %w", err)
	}

	width, height := s.SheetSize(batch.Len())
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)

	for i, item := range batch.Items() {
		src, err := png.Decode(bytes.NewReader(item.Image()))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read barcode %s: %v", models.ErrIOFailure, item.Payload(), err)
		}

		thumb := image.NewRGBA(image.Rect(0, 0, s.cfg.ThumbWidth, s.cfg.ThumbHeight))
		xdraw.BiLinear.Scale(thumb, thumb.Bounds(), src, src.Bounds(), xdraw.Src, nil)

		x := (i%s.cfg.PerRow)*s.cellWidth() + s.cfg.Padding
		y := (i/s.cfg.PerRow)*s.cellHeight() + s.cfg.Padding
		dc.DrawImage(thumb, x, y)

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(item.Payload(), float64(x+s.cfg.ThumbWidth/2), float64(y+s.cfg.ThumbHeight+previewLabelHeight/2), 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: failed to encode preview: %v", models.ErrIOFailure, err)
	}
	return buf.Bytes(), nil
}
