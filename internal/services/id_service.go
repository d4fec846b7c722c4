package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-guest-barcodes/internal/config"
	"go-guest-barcodes/internal/models"
)

// PayloadSeparator joins the parts of a payload
const PayloadSeparator = "-"

// DefaultMaxGuests applies when no guest limit is configured
const DefaultMaxGuests = 1000

type IDService struct {
	prefixes map[models.Category]string
}

func NewIDService(prefixes config.PrefixConfig) *IDService {
	return &IDService{
		prefixes: map[models.Category]string{
			models.CategoryRegular:     prefixes.Regular,
			models.CategoryWithRoom:    prefixes.WithRoom,
			models.CategoryWithoutRoom: prefixes.WithoutRoom,
			models.CategoryWaterpark:   prefixes.Waterpark,
		},
	}
}

// NewDefaultIDService uses the built-in prefix mapping
func NewDefaultIDService() *IDService {
	return NewIDService(config.DefaultConfig().Prefixes)
}

func (s *IDService) Prefix(category models.Category) (string, error) {
	prefix, ok := s.prefixes[category]
	if !ok || prefix == "" {
		return "", fmt.Errorf("%w: no prefix for category %s", models.ErrInvalidInput, category)
	}
	return prefix, nil
}

// GeneratePayload builds prefix[-room]-index-date for one guest
func (s *IDService) GeneratePayload(category models.Category, roomNumber string, index int, date time.Time) (string, error) {
	if !category.IsValid() {
		return "", fmt.Errorf("%w: unknown category %d", models.ErrInvalidInput, int(category))
	}

	roomNumber = strings.TrimSpace(roomNumber)
	if err := ValidateRoomNumber(category, roomNumber); err != nil {
		return "", err
	}
	if index < 1 {
		return "", fmt.Errorf("%w: sequence index must be at least 1, got %d", models.ErrInvalidInput, index)
	}

	prefix, err := s.Prefix(category)
	if err != nil {
		return "", err
	}

	parts := []string{prefix}
	if roomNumber != "" {
		parts = append(parts, roomNumber)
	}
	parts = append(parts, strconv.Itoa(index), date.Format(models.PayloadDateLayout))

	return strings.Join(parts, PayloadSeparator), nil
}

// Payload generates the payload for an existing record
func (s *IDService) Payload(record models.GuestRecord) (string, error) {
	return s.GeneratePayload(record.Category, record.RoomNumber, record.SequenceIndex, record.IssuedDate)
}

// GenerateRecords returns count records numbered from 1
func (s *IDService) GenerateRecords(category models.Category, roomNumber string, count int, date time.Time) ([]models.GuestRecord, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: guest count must be a positive number", models.ErrInvalidInput)
	}

	roomNumber = strings.TrimSpace(roomNumber)
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %d", models.ErrInvalidInput, int(category))
	}
	if err := ValidateRoomNumber(category, roomNumber); err != nil {
		return nil, err
	}

	issued := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	records := make([]models.GuestRecord, 0, count)
	for i := 1; i <= count; i++ {
		records = append(records, models.GuestRecord{
			Category:      category,
			RoomNumber:    roomNumber,
			SequenceIndex: i,
			IssuedDate:    issued,
		})
	}
	return records, nil
}

// ValidateRoomNumber enforces that only WithRoom guests carry a digit-only room number
func ValidateRoomNumber(category models.Category, roomNumber string) error {
	if !category.RequiresRoom() {
		if roomNumber != "" {
			return fmt.Errorf("%w: room number is only allowed for category %s", models.ErrInvalidInput, models.CategoryWithRoom)
		}
		return nil
	}

	if roomNumber == "" {
		return fmt.Errorf("%w: please enter a valid room number", models.ErrInvalidInput)
	}
	for _, r := range roomNumber {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: room number %q must contain digits only", models.ErrInvalidInput, roomNumber)
		}
	}
	return nil
}

// ParseGuestCount validates the raw guest count input against maxGuests
func ParseGuestCount(raw string, maxGuests int) (int, error) {
	if maxGuests <= 0 {
		maxGuests = DefaultMaxGuests
	}

	value := strings.TrimSpace(raw)
	count, err := strconv.Atoi(value)
	if err != nil || count <= 0 {
		return 0, fmt.Errorf("%w: guest count must be a positive number, got %q", models.ErrInvalidInput, raw)
	}
	if count > maxGuests {
		return 0, fmt.Errorf("%w: guest count %d exceeds the limit of %d", models.ErrInvalidInput, count, maxGuests)
	}
	return count, nil
}
