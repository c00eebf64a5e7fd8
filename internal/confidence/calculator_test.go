package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/disclosure-cli/internal/model"
	"github.com/sells-group/disclosure-cli/pkg/retrieval"
)

func TestScore_NoDataNoSources(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	s := c.Score(&model.ProvidedData{}, nil, model.SectionMDA)

	// Retrieval-only coverage is the bare baseline; no passages means zero
	// source quality.
	assert.Equal(t, 0.3, s.DataCoverage)
	assert.Equal(t, 0.0, s.SourceQuality)
	assert.Equal(t, 0.18, s.Overall)
	assert.Contains(t, s.Reasoning, "Limited financial data")
	assert.Contains(t, s.Reasoning, "Limited source material available")
}

func TestScore_PartialCoverage(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	data := &model.ProvidedData{Fields: map[string]string{"Revenue": "$10B"}}
	s := c.Score(data, nil, model.SectionMDA)

	// 1 of 7 checklist items matched plus the 0.3 baseline = 0.44.
	assert.Equal(t, 0.44, s.DataCoverage)
	assert.Contains(t, s.Reasoning, "Revenue figures grounded in provided data")
}

func TestScore_FullCoverageClampedToOne(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	data := &model.ProvidedData{
		Fields: map[string]string{
			"Revenue":          "$10B",
			"Growth":           "25%",
			"Operating Income": "$2B",
			"Net Income":       "$1.5B",
			"Cash Flow":        "$3B",
			"EBITDA":           "$4B",
			"Margin":           "20%",
		},
		Narrative: "strong year",
	}
	s := c.Score(data, nil, model.SectionMDA)

	assert.Equal(t, 1.0, s.DataCoverage)
	assert.Contains(t, s.Reasoning, "Comprehensive financial data provided")
	assert.Contains(t, s.Reasoning, "Growth metrics available for comparison")
}

func TestScore_NarrativeBonus(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	bare := c.Score(&model.ProvidedData{Fields: map[string]string{"Revenue": "$10B"}}, nil, model.SectionMDA)
	withNarrative := c.Score(&model.ProvidedData{
		Fields:    map[string]string{"Revenue": "$10B"},
		Narrative: "context",
	}, nil, model.SectionMDA)

	assert.InDelta(t, bare.DataCoverage+0.2, withNarrative.DataCoverage, 1e-9)
}

func TestScore_SourceQuality(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	passages := []retrieval.Passage{
		{Section: "item_1_business", FilingDate: "2024-02-21"},
		{Section: "item_7_mda", FilingDate: "2024-02-21"},
		{Section: "item_7_mda", FilingDate: "2024-02-21"},
	}
	s := c.Score(&model.ProvidedData{}, passages, model.SectionMDA)

	// quantity 3/8, diversity 2/3, recency 1.0:
	// 0.3*0.375 + 0.3*0.6667 + 0.4*1.0 = 0.7125 -> 0.71
	assert.Equal(t, 0.71, s.SourceQuality)
}

func TestScore_RecencyBands(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	tests := []struct {
		name       string
		filingDate string
		want       float64
	}{
		// One passage, one section: 0.3*0.125 + 0.3*0.3333 + 0.4*recency
		{"latest year", "2025-01-15", 0.54},
		{"prior year", "2024-01-15", 0.54},
		{"two years back", "2023-01-15", 0.46},
		{"older", "2019-01-15", 0.34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := c.Score(&model.ProvidedData{}, []retrieval.Passage{{Section: "item_7_mda", FilingDate: tt.filingDate}}, model.SectionMDA)
			assert.Equal(t, tt.want, s.SourceQuality)
		})
	}
}

func TestScore_OverallBlend(t *testing.T) {
	c := NewCalculator(DefaultWeights())

	data := &model.ProvidedData{Fields: map[string]string{"Revenue": "$10B"}}
	passages := []retrieval.Passage{
		{Section: "item_1_business", FilingDate: "2024-02-21"},
		{Section: "item_7_mda", FilingDate: "2024-02-21"},
		{Section: "item_7_mda", FilingDate: "2024-02-21"},
	}
	s := c.Score(data, passages, model.SectionMDA)

	// 0.6*0.442857 + 0.4*0.7125 = 0.550714 -> 0.55
	assert.Equal(t, 0.55, s.Overall)
}

func TestIndicator_Levels(t *testing.T) {
	tests := []struct {
		overall float64
		level   string
	}{
		{0.85, "HIGH"},
		{0.65, "MEDIUM"},
		{0.40, "LOW"},
	}

	for _, tt := range tests {
		out := Indicator(model.ConfidenceScore{Overall: tt.overall, DataCoverage: 0.5, SourceQuality: 0.5, Reasoning: "r"})
		assert.Contains(t, out, tt.level)
		assert.Contains(t, out, "Confidence Assessment")
	}
}
