package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordError_Error(t *testing.T) {
	err := MissingField("s1", "Proposal title")
	assert.Equal(t, "record s1: Proposal title: error: required field is empty", err.Error())

	dup := DuplicateID("s2")
	assert.Contains(t, dup.Error(), "duplicate identifier")
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", ErrorSeverityInfo.String())
	assert.Equal(t, "warning", ErrorSeverityWarning.String())
	assert.Equal(t, "error", ErrorSeverityError.String())
	assert.Equal(t, "fatal", ErrorSeverityFatal.String())
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())

	c.Add(*MissingField("s1", "ID"))
	c.Add(*MissingField("s2", "Proposal title"))
	c.AddError(fmt.Errorf("output directory not writable"))
	c.AddError(nil) // ignored

	assert.True(t, c.HasErrors())
	assert.Equal(t, 3, c.Count())
	assert.Len(t, c.RecordErrors(), 2)
	assert.Len(t, c.AllErrors(), 3)

	byRecord := c.ByRecord("s1")
	require.Len(t, byRecord, 1)
	assert.Equal(t, "ID", byRecord[0].Field)

	c.Clear()
	assert.False(t, c.HasErrors())
	assert.Equal(t, 0, c.Count())
}

func TestCollector_TimestampsAssigned(t *testing.T) {
	c := NewCollector()
	c.Add(RecordError{RecordID: "s1", Message: "x", Severity: ErrorSeverityWarning})

	errs := c.RecordErrors()
	require.Len(t, errs, 1)
	assert.False(t, errs[0].Timestamp.IsZero())
}
