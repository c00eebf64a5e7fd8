package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredData(t *testing.T) {
	missing := RequiredData()
	assert.Len(t, missing.Financial, 9)
	assert.Len(t, missing.Business, 5)
	assert.Len(t, missing.Operational, 5)
}

func TestClarifyingQuestions(t *testing.T) {
	out := ClarifyingQuestions("NVDA", "2025")

	assert.Contains(t, out, "NVDA's Form 10-K for fiscal year 2025")
	assert.Contains(t, out, "**Financial Data Required:**")
	assert.Contains(t, out, "Total revenue and year-over-year growth rate")
	assert.Contains(t, out, "**Business Updates:**")
	assert.Contains(t, out, "Key acquisitions or divestitures")
	assert.Contains(t, out, "**Operational Information:**")
	assert.Contains(t, out, "in any format")
}
