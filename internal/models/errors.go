package models

import "errors"

var (
	// ErrInvalidInput covers bad room numbers, categories and guest counts
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyBatch is returned when an export is requested without barcodes
	ErrEmptyBatch = errors.New("no barcodes generated yet")

	// ErrEncodingFailure wraps rejections from the symbol encoder
	ErrEncodingFailure = errors.New("barcode encoding failed")

	// ErrIOFailure wraps archive, document and file write failures
	ErrIOFailure = errors.New("export write failed")
)
