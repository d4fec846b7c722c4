package services

import (
	"bytes"
	"testing"
	"time"

	"go-guest-barcodes/internal/dependencies/clock"
	"go-guest-barcodes/internal/logger"
	"go-guest-barcodes/internal/models"

	"github.com/stretchr/testify/suite"
)

type BatchServiceSuite struct {
	suite.Suite
	logs    bytes.Buffer
	clock   *clock.FixedClock
	service *BatchService
}

func TestBatchServiceSuite(t *testing.T) {
	suite.Run(t, new(BatchServiceSuite))
}

func (s *BatchServiceSuite) SetupTest() {
	s.logs.Reset()
	s.clock = clock.NewFixed(time.Date(2024, 5, 1, 14, 5, 0, 0, time.Local))
	log := logger.NewWriterLogger(logger.LoggerConfig{Level: logger.DEBUG, Service: "test"}, &s.logs)
	s.service = NewBatchService(NewDefaultIDService(), defaultBarcodeService(), 50, s.clock, log)
}

func (s *BatchServiceSuite) TestGenerateWithRoom() {
	batch, err := s.service.Generate(GenerateRequest{
		Category:   "with-room",
		RoomNumber: "204",
		GuestCount: "3",
	})
	s.Require().NoError(err)

	s.Equal([]string{
		"GR-204-1-2024-05-01",
		"GR-204-2-2024-05-01",
		"GR-204-3-2024-05-01",
	}, batch.Payloads())
	s.Equal(s.clock.Now(), batch.CreatedAt)
	s.Contains(s.logs.String(), `"barcodes_generated":3`)
}

func (s *BatchServiceSuite) TestGenerateUsesRequestedDate() {
	date, err := ParseDate("2023-12-31")
	s.Require().NoError(err)

	batch, err := s.service.Generate(GenerateRequest{Category: "waterpark", GuestCount: "1", Date: date})
	s.Require().NoError(err)
	s.Equal([]string{"WP-1-2023-12-31"}, batch.Payloads())
}

func (s *BatchServiceSuite) TestInvalidCountRejectedBeforeGeneration() {
	for _, count := range []string{"abc", "-5", "0", ""} {
		batch, err := s.service.Generate(GenerateRequest{Category: "bogus", GuestCount: count})
		s.ErrorIs(err, models.ErrInvalidInput)
		s.Nil(batch)
		s.Contains(err.Error(), "guest count")
	}
	s.NotContains(s.logs.String(), "Barcodes generated")
}

func (s *BatchServiceSuite) TestGuestLimit() {
	batch, err := s.service.Generate(GenerateRequest{Category: "regular", GuestCount: "50"})
	s.Require().NoError(err)
	s.Equal(50, batch.Len())

	for _, count := range []string{"51", "2000000000"} {
		batch, err := s.service.Generate(GenerateRequest{Category: "regular", GuestCount: count})
		s.ErrorIs(err, models.ErrInvalidInput)
		s.Nil(batch)
		s.Contains(err.Error(), "exceeds the limit of 50")
	}
}

func (s *BatchServiceSuite) TestInvalidRequests() {
	requests := []GenerateRequest{
		{Category: "spa", GuestCount: "2"},
		{Category: "with-room", GuestCount: "2"},
		{Category: "with-room", RoomNumber: "2B", GuestCount: "2"},
		{Category: "regular", RoomNumber: "12", GuestCount: "2"},
	}
	for _, req := range requests {
		_, err := s.service.Generate(req)
		s.ErrorIs(err, models.ErrInvalidInput, "%+v", req)
	}
}

func (s *BatchServiceSuite) TestParseDate() {
	date, err := ParseDate("")
	s.Require().NoError(err)
	s.True(date.IsZero())

	_, err = ParseDate("01/05/2024")
	s.ErrorIs(err, models.ErrInvalidInput)
}
