package services

import (
	"fmt"
	"time"

	"go-guest-barcodes/internal/dependencies/clock"
	"go-guest-barcodes/internal/logger"
	"go-guest-barcodes/internal/models"
)

// GenerateRequest carries the raw form inputs of one generation
type GenerateRequest struct {
	Category   string
	RoomNumber string
	GuestCount string
	// Date defaults to today when zero
	Date time.Time
}

type BatchService struct {
	ids       *IDService
	barcodes  *BarcodeService
	maxGuests int
	clock     clock.Clock
	logger    *logger.StructuredLogger
}

func NewBatchService(ids *IDService, barcodes *BarcodeService, maxGuests int, clk clock.Clock, log *logger.StructuredLogger) *BatchService {
	if maxGuests <= 0 {
		maxGuests = DefaultMaxGuests
	}
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &BatchService{
		ids:       ids,
		barcodes:  barcodes,
		maxGuests: maxGuests,
		clock:     clk,
		logger:    log,
	}
}

// Generate validates the request and renders one barcode per guest
func (s *BatchService) Generate(req GenerateRequest) (*models.ExportBatch, error) {
	count, err := ParseGuestCount(req.GuestCount, s.maxGuests)
	if err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = clock.Today(s.clock)
	}

	records, err := s.ids.GenerateRecords(category, req.RoomNumber, count, date)
	if err != nil {
		return nil, err
	}

	payloads := make([]string, 0, len(records))
	for _, record := range records {
		payload, err := s.ids.Payload(record)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}

	batch, err := s.barcodes.RenderBatch(payloads, s.clock.Now())
	if err != nil {
		s.logger.Error("Barcode generation failed", err, map[string]interface{}{
			"category": category.String(),
			"count":    count,
		})
		return nil, err
	}

	s.logger.LogBusinessEvent("Barcodes generated", "barcode", "generate", map[string]interface{}{
		"batch_id":           batch.ID.String(),
		"category":           category.String(),
		"barcodes_generated": batch.Len(),
		"symbology":          s.barcodes.Symbology(),
		"issued_date":        date.Format(models.PayloadDateLayout),
	})
	return batch, nil
}

// ParseDate accepts YYYY-MM-DD, an empty string means today
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.ParseInLocation(models.PayloadDateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", models.ErrInvalidInput, raw)
	}
	return date, nil
}
