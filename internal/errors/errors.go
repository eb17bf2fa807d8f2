// Package errors provides typed per-record generation errors and a collector
// used by the page and card generators to aggregate skipped records for the
// end-of-run summary.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// RecordError represents a problem with a single session or speaker record.
// Record-level errors never abort the batch; they are collected and reported.
type RecordError struct {
	RecordID  string
	Field     string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (re *RecordError) Error() string {
	if re.Field != "" {
		return fmt.Sprintf("record %s: %s: %s: %s", re.RecordID, re.Field, re.Severity, re.Message)
	}
	return fmt.Sprintf("record %s: %s: %s", re.RecordID, re.Severity, re.Message)
}

// MissingField builds a RecordError for a required field that is empty.
func MissingField(recordID, field string) *RecordError {
	return &RecordError{
		RecordID: recordID,
		Field:    field,
		Message:  "required field is empty",
		Severity: ErrorSeverityError,
	}
}

// DuplicateID builds a RecordError for a record whose id is already taken.
func DuplicateID(recordID string) *RecordError {
	return &RecordError{
		RecordID: recordID,
		Field:    "ID",
		Message:  "duplicate identifier, record skipped",
		Severity: ErrorSeverityError,
	}
}

// Collector collects record errors and general errors across a batch run.
// Both generators share one collector so the summary covers the whole run.
type Collector struct {
	recordErrors []RecordError
	errors       []error
	mutex        sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		recordErrors: make([]RecordError, 0),
		errors:       make([]error, 0),
	}
}

// Add adds a record error to the collector
func (c *Collector) Add(err RecordError) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	err.Timestamp = time.Now()
	c.recordErrors = append(c.recordErrors, err)
}

// AddError adds a general error to the collector
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// RecordErrors returns all collected record errors
func (c *Collector) RecordErrors() []RecordError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]RecordError, len(c.recordErrors))
	copy(result, c.recordErrors)
	return result
}

// AllErrors returns all collected errors (record and general)
func (c *Collector) AllErrors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	all := make([]error, 0, len(c.recordErrors)+len(c.errors))
	for i := range c.recordErrors {
		all = append(all, &c.recordErrors[i])
	}
	all = append(all, c.errors...)
	return all
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.recordErrors) > 0 || len(c.errors) > 0
}

// Clear clears all errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.recordErrors = c.recordErrors[:0]
	c.errors = c.errors[:0]
}

// ByRecord returns errors for a specific record id
func (c *Collector) ByRecord(recordID string) []RecordError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []RecordError
	for _, err := range c.recordErrors {
		if err.RecordID == recordID {
			out = append(out, err)
		}
	}
	return out
}

// Count returns the number of collected errors
func (c *Collector) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.recordErrors) + len(c.errors)
}
