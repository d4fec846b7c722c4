package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/logger"
	"go-guest-barcodes/internal/models"

	xdraw "golang.org/x/image/draw"
)

// PageLayout describes a fixed-size page in pixels
type PageLayout struct {
	PageWidth  int `json:"pageWidth"`
	PageHeight int `json:"pageHeight"`
	CellWidth  int `json:"cellWidth"`
	CellHeight int `json:"cellHeight"`
	Margin     int `json:"margin"`
	Spacing    int `json:"spacing"`
}

func LayoutFromConfig(cfg config.PageConfig) PageLayout {
	return PageLayout{
		PageWidth:  cfg.Width,
		PageHeight: cfg.Height,
		CellWidth:  cfg.CellWidth,
		CellHeight: cfg.CellHeight,
		Margin:     cfg.Margin,
		Spacing:    cfg.Spacing,
	}
}

func (l PageLayout) Validate() error {
	if l.PageWidth <= 0 || l.PageHeight <= 0 {
		return fmt.Errorf("%w: page size must be positive", models.ErrInvalidInput)
	}
	if l.CellWidth <= 0 || l.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size must be positive", models.ErrInvalidInput)
	}
	if l.Margin < 0 || l.Spacing < 0 {
		return fmt.Errorf("%w: margin and spacing cannot be negative", models.ErrInvalidInput)
	}
	if l.Margin+l.CellWidth > l.PageWidth {
		return fmt.Errorf("%w: cell width %d does not fit a %d px page with margin %d", models.ErrInvalidInput, l.CellWidth, l.PageWidth, l.Margin)
	}
	if l.Capacity() < 1 {
		return fmt.Errorf("%w: page height %d cannot hold a single cell", models.ErrInvalidInput, l.PageHeight)
	}
	return nil
}

// Capacity is the number of barcodes per page, floor((H - margin) / (cell + spacing))
func (l PageLayout) Capacity() int {
	slot := l.CellHeight + l.Spacing
	if slot <= 0 || l.PageHeight <= l.Margin {
		return 0
	}
	return (l.PageHeight - l.Margin) / slot
}

// Placement is where one barcode lands
type Placement struct {
	Index int
	Page  int
	Cell  image.Rectangle
}

// Place assigns count barcodes to pages top to bottom. A barcode starts a new
// page when its cell plus the following spacing would pass the page height.
func (l PageLayout) Place(count int) []Placement {
	placements := make([]Placement, 0, count)
	page, y := 0, l.Margin
	for i := 0; i < count; i++ {
		if y+l.CellHeight+l.Spacing > l.PageHeight {
			page++
			y = l.Margin
		}
		placements = append(placements, Placement{
			Index: i,
			Page:  page,
			Cell:  image.Rect(l.Margin, y, l.Margin+l.CellWidth, y+l.CellHeight),
		})
		y += l.CellHeight + l.Spacing
	}
	return placements
}

type ExportService struct {
	logger *logger.StructuredLogger
}

func NewExportService(log *logger.StructuredLogger) *ExportService {
	if log == nil {
		log = logger.Discard()
	}
	return &ExportService{logger: log}
}

// ToArchive writes each barcode as <payload>.png into a deflate ZIP
func (s *ExportService) ToArchive(batch *models.ExportBatch) ([]byte, error) {
	if batch.IsEmpty() {
		return nil, models.ErrEmptyBatch
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, item := range batch.Items() {
		header := &zip.FileHeader{
			Name:     item.FileName(),
			Method:   zip.Deflate,
			Modified: batch.CreatedAt,
		}
		entry, err := zipWriter.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create zip entry %s: %v", models.ErrIOFailure, header.Name, err)
		}
		if _, err := entry.Write(item.Image()); err != nil {
			return nil, fmt.Errorf("%w: failed to write zip entry %s: %v", models.ErrIOFailure, header.Name, err)
		}
	}

	if err := zipWriter.SetComment("batch " + batch.ID.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIOFailure, err)
	}
	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close ZIP writer: %v", models.ErrIOFailure, err)
	}

	s.logger.LogBusinessEvent("Archive created", "archive", "export", map[string]interface{}{
		"batch_id": batch.ID.String(),
		"entries":  batch.Len(),
		"bytes":    buf.Len(),
	})
	return buf.Bytes(), nil
}

// Paginate lays the batch out on white pages of the given layout
func (s *ExportService) Paginate(batch *models.ExportBatch, layout PageLayout) ([]*image.Gray, error) {
	if batch.IsEmpty() {
		return nil, models.ErrEmptyBatch
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	items := batch.Items()
	var pages []*image.Gray
	for _, placement := range layout.Place(len(items)) {
		if placement.Page == len(pages) {
			page := image.NewGray(image.Rect(0, 0, layout.PageWidth, layout.PageHeight))
			draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
			pages = append(pages, page)
		}

		item := items[placement.Index]
		src, err := png.Decode(bytes.NewReader(item.Image()))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read barcode %s: %v", models.ErrIOFailure, item.Payload(), err)
		}
		pasteInto(pages[placement.Page], placement.Cell, src)
	}

	s.logger.Debug("Batch paginated", map[string]interface{}{
		"batch_id": batch.ID.String(),
		"pages":    len(pages),
		"per_page": layout.Capacity(),
	})
	return pages, nil
}

// pasteInto centres src in cell keeping its aspect ratio. Enlargement uses
// whole multiples so bars stay uniform, and both directions sample the nearest
// pixel so bars stay black and white.
func pasteInto(dst draw.Image, cell image.Rectangle, src image.Image) {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w == 0 || h == 0 {
		return
	}

	var tw, th int
	if w <= cell.Dx() && h <= cell.Dy() {
		factor := min(cell.Dx()/w, cell.Dy()/h)
		tw, th = w*factor, h*factor
	} else {
		scale := min(float64(cell.Dx())/float64(w), float64(cell.Dy())/float64(h))
		tw, th = max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
	}

	x := cell.Min.X + (cell.Dx()-tw)/2
	y := cell.Min.Y + (cell.Dy()-th)/2
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+tw, y+th), src, sb, draw.Src, nil)
}

// WriteFile performs the single explicit write of an export
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create directory %s: %v", models.ErrIOFailure, dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", models.ErrIOFailure, err)
	}
	return nil
}
