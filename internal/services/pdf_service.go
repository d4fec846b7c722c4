package services

import (
	"bytes"
	"fmt"
	"image/png"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/models"

	"github.com/jung-kurt/gofpdf"
)

const mmPerInch = 25.4

type PDFService struct {
	exporter  *ExportService
	exportCfg config.ExportConfig
}

func NewPDFService(exporter *ExportService, exportCfg config.ExportConfig) *PDFService {
	return &PDFService{
		exporter:  exporter,
		exportCfg: exportCfg,
	}
}

// PageSizeMM converts a pixel page size at dpi into millimetres
func PageSizeMM(layout PageLayout, dpi int) (float64, float64) {
	return float64(layout.PageWidth) * mmPerInch / float64(dpi),
		float64(layout.PageHeight) * mmPerInch / float64(dpi)
}

// ToDocument renders the whole batch as one multi-page PDF, one page image per PDF page
func (s *PDFService) ToDocument(batch *models.ExportBatch, layout PageLayout, dpi int) ([]byte, error) {
	if batch.IsEmpty() {
		return nil, models.ErrEmptyBatch
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("%w: dpi must be positive", models.ErrInvalidInput)
	}

	pages, err := s.exporter.Paginate(batch, layout)
	if err != nil {
		return nil, err
	}

	widthMM, heightMM := PageSizeMM(layout, dpi)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: widthMM, Ht: heightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(s.exportCfg.DocumentTitle, true)
	pdf.SetAuthor(s.exportCfg.Author, true)
	pdf.SetSubject("batch "+batch.ID.String(), false)
	pdf.SetCreator("guestcodes", false)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return nil, fmt.Errorf("%w: failed to encode page %d: %v", models.ErrIOFailure, i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, widthMM, heightMM, false, opts, 0, "")
	}

	if pdf.Err() {
		return nil, fmt.Errorf("%w: failed to build PDF: %v", models.ErrIOFailure, pdf.Error())
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to generate PDF: %v", models.ErrIOFailure, err)
	}

	s.exporter.logger.LogBusinessEvent("Document created", "document", "export", map[string]interface{}{
		"batch_id": batch.ID.String(),
		"pages":    len(pages),
		"barcodes": batch.Len(),
		"bytes":    out.Len(),
	})
	return out.Bytes(), nil
}
