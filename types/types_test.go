package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	records := []CheckRecord{
		{OldURL: "a", Status: StatusPassed},
		{OldURL: "b", Status: StatusFailed},
		{OldURL: "c", Status: StatusSkipped},
		{OldURL: "d", Status: StatusFailed},
	}

	s := Summarize(records)
	assert.Equal(t, Summary{Total: 4, Passed: 1, Failed: 2, Skipped: 1}, s)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestFilterByStatus_PreservesOrder(t *testing.T) {
	records := []CheckRecord{
		{OldURL: "a", Status: StatusFailed},
		{OldURL: "b", Status: StatusPassed},
		{OldURL: "c", Status: StatusFailed},
	}

	failed := FilterByStatus(records, StatusFailed)
	assert.Len(t, failed, 2)
	assert.Equal(t, "a", failed[0].OldURL)
	assert.Equal(t, "c", failed[1].OldURL)

	assert.Empty(t, FilterByStatus(records, StatusSkipped))
}
