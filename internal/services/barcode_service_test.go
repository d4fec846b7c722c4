package services

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"testing"
	"time"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/models"
	"go-guest-barcodes/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreatedAt = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func defaultBarcodeService() *BarcodeService {
	return NewBarcodeService(config.DefaultConfig().Barcode)
}

// newTestBatch renders count waterpark barcodes for 2024-05-01
func newTestBatch(t *testing.T, count int) *models.ExportBatch {
	t.Helper()
	payloads := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		payloads = append(payloads, fmt.Sprintf("WP-%d-2024-05-01", i))
	}
	batch, err := defaultBarcodeService().RenderBatch(payloads, testCreatedAt)
	require.NoError(t, err)
	return batch
}

func TestRenderProducesDecodablePNG(t *testing.T) {
	rendered, err := defaultBarcodeService().Render("GR-204-3-2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, "GR-204-3-2024-05-01", rendered.Payload())
	assert.Equal(t, "GR-204-3-2024-05-01.png", rendered.FileName())

	img, err := png.Decode(bytes.NewReader(rendered.Image()))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())

	result, err := scan.NewDecoder().DecodePNG(rendered.Image())
	require.NoError(t, err)
	assert.Equal(t, "GR-204-3-2024-05-01", result.Text)
	assert.Equal(t, "CODE_128", result.Format)
}

func TestRenderWithoutCaption(t *testing.T) {
	cfg := config.DefaultConfig().Barcode
	withText := NewBarcodeService(cfg)
	cfg.ShowText = false
	withoutText := NewBarcodeService(cfg)

	a, err := withText.Render("NR-1-2024-05-01")
	require.NoError(t, err)
	b, err := withoutText.Render("NR-1-2024-05-01")
	require.NoError(t, err)

	imgA, err := png.Decode(bytes.NewReader(a.Image()))
	require.NoError(t, err)
	imgB, err := png.Decode(bytes.NewReader(b.Image()))
	require.NoError(t, err)
	assert.Equal(t, captionBand, imgA.Bounds().Dy()-imgB.Bounds().Dy())
}

func TestRenderQRCode(t *testing.T) {
	cfg := config.DefaultConfig().Barcode
	cfg.Symbology = SymbologyQR
	service := NewBarcodeService(cfg)

	rendered, err := service.Render("WP-12-2024-05-01")
	require.NoError(t, err)

	result, err := scan.NewDecoder().DecodePNG(rendered.Image())
	require.NoError(t, err)
	assert.Equal(t, "WP-12-2024-05-01", result.Text)
	assert.Equal(t, "QR_CODE", result.Format)
}

func TestRenderRejectsUnencodablePayload(t *testing.T) {
	service := defaultBarcodeService()

	_, err := service.Render("Gäst-1-2024-05-01")
	assert.ErrorIs(t, err, models.ErrEncodingFailure)

	_, err = service.Render(strings.Repeat("A", 81))
	assert.ErrorIs(t, err, models.ErrEncodingFailure)
}

func TestRenderUnknownSymbology(t *testing.T) {
	service := NewBarcodeService(config.BarcodeConfig{Symbology: "ean13"})
	_, err := service.Render("REG-1-2024-05-01")
	assert.ErrorIs(t, err, models.ErrEncodingFailure)
}

func TestRenderBatch(t *testing.T) {
	batch := newTestBatch(t, 4)
	assert.Equal(t, 4, batch.Len())
	assert.Equal(t, testCreatedAt, batch.CreatedAt)
	assert.Equal(t, "WP-4-2024-05-01", batch.Items()[3].Payload())
}

func TestRenderBatchStopsAtFirstFailure(t *testing.T) {
	_, err := defaultBarcodeService().RenderBatch([]string{"REG-1-2024-05-01", "Ω"}, testCreatedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrEncodingFailure)
	assert.Contains(t, err.Error(), "guest 2")
}

func TestRenderBatchRejectsDuplicatePayloads(t *testing.T) {
	_, err := defaultBarcodeService().RenderBatch([]string{"REG-1-2024-05-01", "REG-1-2024-05-01"}, testCreatedAt)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
