package audit

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disclosure-cli/internal/model"
)

func TestNewLogger_GeneratesSessionID(t *testing.T) {
	l := NewLogger(t.TempDir(), "")
	assert.Len(t, l.SessionID(), 8)
	assert.Contains(t, l.LogFile(), "audit_"+l.SessionID()+"_")
}

func TestNewLogger_KeepsExplicitSessionID(t *testing.T) {
	l := NewLogger(t.TempDir(), "sess-1")
	assert.Equal(t, "sess-1", l.SessionID())
}

func TestRecordUserRequest(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	e := l.RecordUserRequest("draft please", "NVDA", "2025")

	assert.Equal(t, EventUserRequest, e.EventType)
	assert.Equal(t, "NVDA", e.Ticker)
	assert.Equal(t, "2025", e.FiscalYear)
	assert.Equal(t, "draft please", e.Content["message"])
	assert.Equal(t, len("draft please"), e.Metadata["message_length"])
	assert.Len(t, e.ContentHash, 16)
}

func TestContentHash_Deterministic(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	e1 := l.RecordUserRequest("same message", "NVDA", "2025")
	e2 := l.RecordUserRequest("same message", "NVDA", "2025")
	e3 := l.RecordUserRequest("different message", "NVDA", "2025")

	assert.Equal(t, e1.ContentHash, e2.ContentHash)
	assert.NotEqual(t, e1.ContentHash, e3.ContentHash)
}

func TestContentHash_IndependentOfFieldOrder(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	a := map[string]string{}
	a["Revenue"] = "10"
	a["Margin"] = "20%"

	b := map[string]string{}
	b["Margin"] = "20%"
	b["Revenue"] = "10"

	e1 := l.RecordDataProvided("raw", a, "NVDA", "2025")
	e2 := l.RecordDataProvided("raw", b, "NVDA", "2025")
	assert.Equal(t, e1.ContentHash, e2.ContentHash)

	b["Revenue"] = "11"
	e3 := l.RecordDataProvided("raw", b, "NVDA", "2025")
	assert.NotEqual(t, e1.ContentHash, e3.ContentHash)
}

func TestRecordDataProvided_SortedFieldNames(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	e := l.RecordDataProvided("raw", map[string]string{"b": "2", "a": "1", "c": "3"}, "NVDA", "2025")

	assert.Equal(t, []string{"a", "b", "c"}, e.Metadata["fields"])
	assert.Equal(t, 3, e.Metadata["fields_parsed"])
}

func TestRecordGeneration(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	sources := []model.Citation{{ID: 1, Company: "NVIDIA Corporation"}}
	conf := model.ConfidenceScore{Overall: 0.71, DataCoverage: 0.6, SourceQuality: 0.8}
	e := l.RecordGeneration(model.SectionMDA, "generated text", sources, conf, "NVDA", "2025")

	assert.Equal(t, EventGeneration, e.EventType)
	assert.Equal(t, "mda", e.Content["section"])
	assert.Equal(t, len("generated text"), e.Content["text_length"])
	assert.Equal(t, 1, e.Metadata["sources_count"])

	confMeta, ok := e.Metadata["confidence"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.71, confMeta["overall"])
}

func TestRecordRevision_ChangeRatio(t *testing.T) {
	l := NewLogger(t.TempDir(), "s")

	e := l.RecordRevision(model.SectionMDA, "aaaa", "aaaaaaaa", "new figures", "NVDA", "2025")
	assert.Equal(t, 2.0, e.Metadata["change_ratio"])
	assert.Equal(t, "new figures", e.Content["revision_reason"])
	assert.Len(t, e.Content["original_hash"], 16)

	// Empty original must not divide by zero.
	e = l.RecordRevision(model.SectionMDA, "", "abcd", "", "NVDA", "2025")
	assert.Equal(t, 4.0, e.Metadata["change_ratio"])
}

func TestSave_RoundTrip(t *testing.T) {
	l := NewLogger(t.TempDir(), "round")
	l.RecordUserRequest("msg", "NVDA", "2025")
	l.RecordGeneration(model.SectionBusiness, "text", nil, model.ConfidenceScore{}, "NVDA", "2025")

	path, err := l.Save()
	require.NoError(t, err)
	assert.Equal(t, l.LogFile(), path)

	doc, err := LoadLog(path)
	require.NoError(t, err)
	assert.Equal(t, "round", doc.SessionID)
	assert.Equal(t, 2, doc.TotalEntries)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, EventUserRequest, doc.Entries[0].EventType)
}

func TestSave_Idempotent(t *testing.T) {
	l := NewLogger(t.TempDir(), "idem")
	l.RecordUserRequest("msg", "NVDA", "2025")

	path, err := l.Save()
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = l.Save()
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSave_EmptySession(t *testing.T) {
	l := NewLogger(t.TempDir(), "empty")

	path, err := l.Save()
	require.NoError(t, err)

	doc, err := LoadLog(path)
	require.NoError(t, err)
	assert.Zero(t, doc.TotalEntries)
	assert.NotNil(t, doc.Entries)
}

func TestSave_MissingDirFails(t *testing.T) {
	l := NewLogger("/nonexistent/audit/dir", "s")
	_, err := l.Save()
	require.Error(t, err)
}

func TestSummary(t *testing.T) {
	l := NewLogger(t.TempDir(), "sum")
	l.RecordUserRequest("msg", "NVDA", "2025")
	l.RecordUserRequest("msg", "MSFT", "2024")
	l.RecordGeneration(model.SectionMDA, "text", nil, model.ConfidenceScore{}, "NVDA", "2025")

	s := l.Summary()
	assert.Equal(t, "sum", s.SessionID)
	assert.Equal(t, 3, s.TotalEntries)
	assert.Equal(t, 2, s.EventCounts[string(EventUserRequest)])
	assert.Equal(t, 1, s.EventCounts[string(EventGeneration)])
	assert.Equal(t, []string{"MSFT", "NVDA"}, s.Tickers)
	assert.Equal(t, []string{"2024", "2025"}, s.FiscalYears)
}

func TestReport(t *testing.T) {
	l := NewLogger(t.TempDir(), "rep")
	l.RecordDataProvided("raw", map[string]string{"Revenue": "10"}, "NVDA", "2025")
	l.RecordGeneration(model.SectionMDA, "text", nil, model.ConfidenceScore{Overall: 0.7}, "NVDA", "2025")

	r := l.Report()
	assert.Contains(t, r, "# Audit Report")
	assert.Contains(t, r, "**Session ID:** rep")
	assert.Contains(t, r, "**Total Events:** 2")
	assert.Contains(t, r, "**Data Fields Provided:** Revenue")
	assert.Contains(t, r, "**Section:** mda")
	assert.True(t, strings.Contains(r, "**Confidence:** 0.7"))
}
