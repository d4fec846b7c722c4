package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"regular", CategoryRegular},
		{"with-room", CategoryWithRoom},
		{"WITH_ROOM", CategoryWithRoom},
		{" without-room ", CategoryWithoutRoom},
		{"waterpark", CategoryWaterpark},
		{"1", CategoryWithRoom},
		{"3", CategoryWaterpark},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategoryRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "swimming", "7", "-1"} {
		_, err := ParseCategory(input)
		assert.ErrorIs(t, err, ErrInvalidInput, input)
	}
}

func TestCategoryRequiresRoom(t *testing.T) {
	for _, c := range Categories() {
		assert.Equal(t, c == CategoryWithRoom, c.RequiresRoom(), c.String())
	}
	assert.Equal(t, "unknown", Category(42).String())
	assert.False(t, Category(42).IsValid())
}

func TestRenderedBarcodeIsImmutable(t *testing.T) {
	data := []byte{1, 2, 3}
	b := NewRenderedBarcode("GR-204-1-2024-05-01", data)

	data[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, b.Image())

	out := b.Image()
	out[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, b.Image())
	assert.Equal(t, "GR-204-1-2024-05-01.png", b.FileName())
}

func TestExportBatchKeepsOrderAndRejectsDuplicates(t *testing.T) {
	batch := NewExportBatch(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	require.True(t, batch.IsEmpty())

	require.NoError(t, batch.Add(NewRenderedBarcode("NR-1-2024-05-01", []byte{1})))
	require.NoError(t, batch.Add(NewRenderedBarcode("NR-2-2024-05-01", []byte{2})))

	err := batch.Add(NewRenderedBarcode("NR-1-2024-05-01", []byte{3}))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, []string{"NR-1-2024-05-01", "NR-2-2024-05-01"}, batch.Payloads())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", batch.ID.String())
}

func TestExportBatchRejectsEmptyPayload(t *testing.T) {
	batch := NewExportBatch(time.Now())
	assert.ErrorIs(t, batch.Add(NewRenderedBarcode("", nil)), ErrInvalidInput)
}

func TestNilBatchIsEmpty(t *testing.T) {
	var batch *ExportBatch
	assert.True(t, batch.IsEmpty())
	assert.Nil(t, batch.Items())
}
