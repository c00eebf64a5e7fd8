// Package model holds the shared domain types for disclosure drafting.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SectionKind identifies a 10-K section the engine can draft.
type SectionKind int

const (
	// SectionBusiness is Item 1. Business.
	SectionBusiness SectionKind = iota
	// SectionMDA is Item 7. Management's Discussion and Analysis.
	SectionMDA
)

// String returns the wire name of the section kind.
func (k SectionKind) String() string {
	switch k {
	case SectionBusiness:
		return "business"
	case SectionMDA:
		return "mda"
	}
	return "unknown"
}

// Title returns the formal 10-K item heading.
func (k SectionKind) Title() string {
	switch k {
	case SectionBusiness:
		return "Item 1. Business"
	case SectionMDA:
		return "Item 7. Management's Discussion and Analysis of Financial Condition and Results of Operations"
	}
	return ""
}

// Filter returns the index section filter used when retrieving passages.
func (k SectionKind) Filter() string {
	switch k {
	case SectionBusiness:
		return "item_1_business"
	case SectionMDA:
		return "item_7_mda"
	}
	return ""
}

// Checklist returns the coverage checklist used to score provided data for
// this section kind. Matching is case-insensitive substring search over the
// provided data.
func (k SectionKind) Checklist() []string {
	switch k {
	case SectionBusiness:
		return []string{"products", "services", "markets", "acquisitions", "partnerships"}
	case SectionMDA:
		return []string{"revenue", "growth", "operating income", "net income", "cash flow", "ebitda", "margin"}
	}
	return nil
}

// ParseSectionKind maps a wire name to a SectionKind.
func ParseSectionKind(s string) (SectionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "business":
		return SectionBusiness, nil
	case "mda":
		return SectionMDA, nil
	}
	return 0, eris.Errorf("model: unknown section kind %q", s)
}

// ProvidedData is the current-year financial and business data supplied by
// the user. Fields maps metric labels to value strings; a prior-year
// counterpart for label L is stored under "L (Prior Year)". Narrative holds
// the free-form text the structured fields were extracted from.
type ProvidedData struct {
	Fields    map[string]string `json:"fields"`
	Narrative string            `json:"narrative,omitempty"`
}

// Empty reports whether no data was provided at all.
func (d *ProvidedData) Empty() bool {
	return d == nil || (len(d.Fields) == 0 && d.Narrative == "")
}

// Citation ties a [Source N] marker in generated text back to the retrieved
// passage it was grounded on. IDs are contiguous from 1 within one
// generation call and assigned in retrieval order.
type Citation struct {
	ID             int     `json:"id"`
	Company        string  `json:"company"`
	Section        string  `json:"section"`
	FilingDate     string  `json:"filing_date"`
	ChunkIndex     int     `json:"chunk_index"`
	RelevanceScore float64 `json:"relevance_score"`
	Excerpt        string  `json:"excerpt"`
}

// ConfidenceScore grades one generation event. All components are in [0,1];
// Overall is fully determined by DataCoverage and SourceQuality.
type ConfidenceScore struct {
	Overall       float64 `json:"overall"`
	DataCoverage  float64 `json:"data_coverage"`
	SourceQuality float64 `json:"source_quality"`
	Reasoning     string  `json:"reasoning"`
}

// Trend classifies the direction of a year-over-year change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// YoYMetric is a single year-over-year metric comparison. Change fields are
// nil when no usable prior value exists; ChangePercent additionally requires
// a non-zero prior.
type YoYMetric struct {
	Name           string   `json:"name"`
	CurrentValue   float64  `json:"current_value"`
	PriorValue     *float64 `json:"prior_value,omitempty"`
	Unit           string   `json:"unit"`
	ChangeAbsolute *float64 `json:"change_absolute,omitempty"`
	ChangePercent  *float64 `json:"change_percent,omitempty"`
	Trend          Trend    `json:"trend"`
}

// GenerationResult is the orchestrator's output for one drafted section.
type GenerationResult struct {
	Text         string          `json:"text"`
	Citations    []Citation      `json:"citations"`
	Confidence   ConfidenceScore `json:"confidence"`
	YoYMetrics   []YoYMetric     `json:"yoy_analysis"`
	YoYTable     string          `json:"yoy_table,omitempty"`
	SourcesCount int             `json:"sources_count"`
}
