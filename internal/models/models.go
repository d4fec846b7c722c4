package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PayloadDateLayout is the date format embedded in every payload
const PayloadDateLayout = "2006-01-02"

type Category int

const (
	CategoryRegular Category = iota
	CategoryWithRoom
	CategoryWithoutRoom
	CategoryWaterpark
)

var categoryNames = map[Category]string{
	CategoryRegular:     "regular",
	CategoryWithRoom:    "with-room",
	CategoryWithoutRoom: "without-room",
	CategoryWaterpark:   "waterpark",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c Category) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

// RequiresRoom reports whether guests of this category carry a room number
func (c Category) RequiresRoom() bool {
	return c == CategoryWithRoom
}

// Categories returns all categories in menu order
func Categories() []Category {
	return []Category{CategoryRegular, CategoryWithRoom, CategoryWithoutRoom, CategoryWaterpark}
}

// ParseCategory accepts the category name or its menu number
func ParseCategory(s string) (Category, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(value); err == nil {
		c := Category(n)
		if c.IsValid() {
			return c, nil
		}
		return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
	}

	value = strings.ReplaceAll(value, "_", "-")
	for c, name := range categoryNames {
		if name == value {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

type GuestRecord struct {
	Category      Category  `json:"category"`
	RoomNumber    string    `json:"roomNumber,omitempty"`
	SequenceIndex int       `json:"sequenceIndex"`
	IssuedDate    time.Time `json:"issuedDate"`
}

// RenderedBarcode is immutable once created, use NewRenderedBarcode
type RenderedBarcode struct {
	payload string
	image   []byte
}

func NewRenderedBarcode(payload string, image []byte) RenderedBarcode {
	data := make([]byte, len(image))
	copy(data, image)
	return RenderedBarcode{payload: payload, image: data}
}

func (b RenderedBarcode) Payload() string {
	return b.payload
}

// Image returns a copy of the encoded PNG
func (b RenderedBarcode) Image() []byte {
	data := make([]byte, len(b.image))
	copy(data, b.image)
	return data
}

func (b RenderedBarcode) FileName() string {
	return b.payload + ".png"
}

// ExportBatch holds the barcodes of one generation request in order
type ExportBatch struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	items    []RenderedBarcode
	payloads map[string]struct{}
}

func NewExportBatch(createdAt time.Time) *ExportBatch {
	return &ExportBatch{
		ID:        uuid.New(),
		CreatedAt: createdAt,
		payloads:  make(map[string]struct{}),
	}
}

// Add appends a barcode, rejecting a payload already in the batch
func (b *ExportBatch) Add(barcode RenderedBarcode) error {
	if barcode.Payload() == "" {
		return fmt.Errorf("%w: empty payload", ErrInvalidInput)
	}
	if b.payloads == nil {
		b.payloads = make(map[string]struct{})
	}
	if _, exists := b.payloads[barcode.Payload()]; exists {
		return fmt.Errorf("%w: duplicate payload %q in batch", ErrInvalidInput, barcode.Payload())
	}
	b.payloads[barcode.Payload()] = struct{}{}
	b.items = append(b.items, barcode)
	return nil
}

func (b *ExportBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

func (b *ExportBatch) IsEmpty() bool {
	return b.Len() == 0
}

func (b *ExportBatch) Items() []RenderedBarcode {
	if b == nil {
		return nil
	}
	items := make([]RenderedBarcode, len(b.items))
	copy(items, b.items)
	return items
}

func (b *ExportBatch) Payloads() []string {
	payloads := make([]string, 0, b.Len())
	for _, item := range b.Items() {
		payloads = append(payloads, item.Payload())
	}
	return payloads
}
