package monitoring

import (
	"errors"
	"testing"
	"time"

	"go-guest-barcodes/internal/dependencies/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureGroupsByFingerprint(t *testing.T) {
	clk := clock.NewFixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	tracker := NewErrorTracker(0, clk)

	tracker.CaptureBusinessError("scan", "decode", "Decode failed", "a.png", errors.New("no barcode found"), HIGH, nil)
	clk.CurrentTime = clk.CurrentTime.Add(time.Second)
	tracker.CaptureBusinessError("scan", "decode", "Decode failed", "b.png", errors.New("no barcode found"), HIGH, nil)
	tracker.CaptureBusinessError("scan", "verify", "Payload does not match file name", "c.png", nil, MEDIUM, nil)

	errs := tracker.GetErrors()
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Count)
	assert.Equal(t, []string{"a.png", "b.png"}, errs[0].Subjects)
	assert.Equal(t, "HIGH", errs[0].Severity)
	assert.Equal(t, clk.CurrentTime, errs[0].LastSeen)
	assert.True(t, errs[0].FirstSeen.Before(errs[0].LastSeen))
	assert.Equal(t, 3, tracker.Total())
}

func TestGetErrorsReturnsCopies(t *testing.T) {
	tracker := NewErrorTracker(0, nil)
	tracker.CaptureBusinessError("scan", "decode", "Decode failed", "a.png", nil, LOW, nil)

	errs := tracker.GetErrors()
	errs[0].Subjects[0] = "changed"
	assert.Equal(t, "a.png", tracker.GetErrors()[0].Subjects[0])
}

func TestMaxErrorsEvictsOldest(t *testing.T) {
	tracker := NewErrorTracker(2, nil)
	for _, msg := range []string{"first", "second", "third"} {
		tracker.CaptureBusinessError("scan", "decode", msg, "", nil, LOW, nil)
	}

	errs := tracker.GetErrors()
	require.Len(t, errs, 2)
	assert.Equal(t, "second", errs[0].Message)
	assert.Equal(t, "third", errs[1].Message)
	assert.Equal(t, "CRITICAL", CRITICAL.String())
}
