package scan

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path"
	"strings"

	"go-guest-barcodes/internal/models"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var ErrNoCodeFound = errors.New("no barcode found")

// Result represents a decode result
type Result struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// Decoder reads back the symbols this tool renders
type Decoder struct {
	readers []gozxing.Reader
}

func NewDecoder() *Decoder {
	return &Decoder{
		readers: []gozxing.Reader{
			oned.NewCode128Reader(),
			qrcode.NewQRCodeReader(),
		},
	}
}

// DecodePNG decodes a PNG encoded barcode image
func (d *Decoder) DecodePNG(data []byte) (*Result, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("PNG decode failed: %w", err)
	}
	return d.DecodeImage(img)
}

func (d *Decoder) DecodeImage(img image.Image) (*Result, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_POSSIBLE_FORMATS: []gozxing.BarcodeFormat{
			gozxing.BarcodeFormat_CODE_128,
			gozxing.BarcodeFormat_QR_CODE,
		},
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	for _, reader := range d.readers {
		result, decodeErr := reader.Decode(bmp, hints)
		if decodeErr == nil && result != nil {
			return &Result{
				Text:   result.GetText(),
				Format: mapFormat(result.GetBarcodeFormat()),
			}, nil
		}
	}
	return nil, ErrNoCodeFound
}

// EntryCheck is the outcome for one archive entry
type EntryCheck struct {
	Name     string `json:"name"`
	Expected string `json:"expected"`
	Decoded  string `json:"decoded,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (c EntryCheck) OK() bool {
	return c.Error == "" && c.Decoded == c.Expected
}

type VerifyReport struct {
	Comment string       `json:"comment,omitempty"`
	Entries []EntryCheck `json:"entries"`
}

func (r *VerifyReport) Failures() []EntryCheck {
	var failed []EntryCheck
	for _, entry := range r.Entries {
		if !entry.OK() {
			failed = append(failed, entry)
		}
	}
	return failed
}

// VerifyArchive decodes every PNG entry and compares it with its file name
func (d *Decoder) VerifyArchive(data []byte) (*VerifyReport, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", models.ErrInvalidInput, err)
	}

	report := &VerifyReport{Comment: reader.Comment}
	for _, file := range reader.File {
		if !strings.EqualFold(path.Ext(file.Name), ".png") {
			continue
		}

		check := EntryCheck{
			Name:     file.Name,
			Expected: strings.TrimSuffix(path.Base(file.Name), path.Ext(file.Name)),
		}

		content, err := readEntry(file)
		if err != nil {
			check.Error = err.Error()
			report.Entries = append(report.Entries, check)
			continue
		}

		result, err := d.DecodePNG(content)
		if err != nil {
			check.Error = err.Error()
		} else {
			check.Decoded = result.Text
		}
		report.Entries = append(report.Entries, check)
	}

	if len(report.Entries) == 0 {
		return nil, models.ErrEmptyBatch
	}
	return report, nil
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func mapFormat(format gozxing.BarcodeFormat) string {
	switch format {
	case gozxing.BarcodeFormat_CODE_128:
		return "CODE_128"
	case gozxing.BarcodeFormat_QR_CODE:
		return "QR_CODE"
	default:
		return "UNKNOWN"
	}
}
