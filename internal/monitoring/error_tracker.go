package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go-guest-barcodes/internal/dependencies/clock"
)

// ErrorSeverity represents error severity levels
type ErrorSeverity int

const (
	LOW ErrorSeverity = iota
	MEDIUM
	HIGH
	CRITICAL
)

// String returns string representation of error severity
func (es ErrorSeverity) String() string {
	switch es {
	case LOW:
		return "LOW"
	case MEDIUM:
		return "MEDIUM"
	case HIGH:
		return "HIGH"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ErrorDetails is one deduplicated error with every subject it was seen on
type ErrorDetails struct {
	Message     string                 `json:"message"`
	Error       string                 `json:"error,omitempty"`
	Severity    string                 `json:"severity"`
	Component   string                 `json:"component"`
	Operation   string                 `json:"operation"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Subjects    []string               `json:"subjects,omitempty"`
	Fingerprint string                 `json:"fingerprint"`
	Count       int                    `json:"count"`
	FirstSeen   time.Time              `json:"first_seen"`
	LastSeen    time.Time              `json:"last_seen"`
}

// ErrorTracker groups repeated failures of one run by fingerprint
type ErrorTracker struct {
	errors    map[string]*ErrorDetails
	order     []string
	clock     clock.Clock
	mutex     sync.RWMutex
	maxErrors int
}

// NewErrorTracker creates a tracker keeping at most maxErrors distinct errors
func NewErrorTracker(maxErrors int, clk clock.Clock) *ErrorTracker {
	if clk == nil {
		clk = clock.New()
	}
	return &ErrorTracker{
		errors:    make(map[string]*ErrorDetails),
		clock:     clk,
		maxErrors: maxErrors,
	}
}

// CaptureBusinessError records a failure of subject, e.g. an archive entry
func (et *ErrorTracker) CaptureBusinessError(component, operation, message, subject string, err error, severity ErrorSeverity, context map[string]interface{}) *ErrorDetails {
	now := et.clock.Now().UTC()
	details := &ErrorDetails{
		Message:   message,
		Severity:  severity.String(),
		Component: component,
		Operation: operation,
		Context:   context,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
	if err != nil {
		details.Error = err.Error()
	}
	if subject != "" {
		details.Subjects = []string{subject}
	}
	details.Fingerprint = generateFingerprint(details)

	return et.storeError(details)
}

// storeError stores or updates an error
func (et *ErrorTracker) storeError(details *ErrorDetails) *ErrorDetails {
	et.mutex.Lock()
	defer et.mutex.Unlock()

	if existing, exists := et.errors[details.Fingerprint]; exists {
		existing.Count++
		existing.LastSeen = details.LastSeen
		existing.Subjects = append(existing.Subjects, details.Subjects...)
		existing.Context = details.Context
		return existing
	}

	if et.maxErrors > 0 && len(et.order) >= et.maxErrors {
		et.evictOldestError()
	}
	et.errors[details.Fingerprint] = details
	et.order = append(et.order, details.Fingerprint)
	return details
}

// evictOldestError drops the first error seen
func (et *ErrorTracker) evictOldestError() {
	if len(et.order) == 0 {
		return
	}
	delete(et.errors, et.order[0])
	et.order = et.order[1:]
}

// GetErrors returns copies of the tracked errors, most frequent first
func (et *ErrorTracker) GetErrors() []ErrorDetails {
	et.mutex.RLock()
	defer et.mutex.RUnlock()

	errors := make([]ErrorDetails, 0, len(et.order))
	for _, fingerprint := range et.order {
		details := *et.errors[fingerprint]
		details.Subjects = append([]string(nil), details.Subjects...)
		errors = append(errors, details)
	}

	sort.SliceStable(errors, func(i, j int) bool {
		return errors[i].Count > errors[j].Count
	})
	return errors
}

// Total counts every captured occurrence
func (et *ErrorTracker) Total() int {
	et.mutex.RLock()
	defer et.mutex.RUnlock()

	total := 0
	for _, details := range et.errors {
		total += details.Count
	}
	return total
}

// generateFingerprint generates a fingerprint for error deduplication
func generateFingerprint(details *ErrorDetails) string {
	components := []string{
		details.Message,
		details.Error,
		details.Component,
		details.Operation,
	}
	return fmt.Sprintf("%x", strings.Join(components, "|"))
}
