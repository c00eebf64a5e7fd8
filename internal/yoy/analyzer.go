// Package yoy derives year-over-year metric comparisons from provided data.
package yoy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sells-group/disclosure-cli/internal/finparse"
	"github.com/sells-group/disclosure-cli/internal/model"
)

// PriorSuffix marks a field as the prior-year counterpart of a metric.
const PriorSuffix = " (Prior Year)"

// significantPct is the |% change| above which a metric is called out in
// the narrative.
const significantPct = 10

// Analyzer computes year-over-year deltas over a flat label/value map and
// renders them as a table and a short narrative. Not safe for concurrent use.
type Analyzer struct {
	metrics []model.YoYMetric
}

// New creates an empty Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Metrics returns the metrics from the most recent Analyze call.
func (a *Analyzer) Metrics() []model.YoYMetric {
	return a.metrics
}

// Analyze partitions fields into current-year and prior-year maps by the
// PriorSuffix marker and emits one YoYMetric per current-year label, in
// sorted label order. Prior-only labels are ignored. A prior value of
// exactly zero suppresses the change fields but still emits the metric.
func (a *Analyzer) Analyze(fields map[string]string) []model.YoYMetric {
	a.metrics = nil

	current := make(map[string]string)
	prior := make(map[string]string)
	for key, value := range fields {
		if base, ok := strings.CutSuffix(key, PriorSuffix); ok {
			prior[base] = value
		} else {
			current[key] = value
		}
	}

	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cur := finparse.Parse(current[name])

		m := model.YoYMetric{
			Name:         name,
			CurrentValue: cur.Magnitude,
			Unit:         string(cur.Unit),
			Trend:        model.TrendFlat,
		}

		if priorStr, ok := prior[name]; ok {
			pv := finparse.Parse(priorStr)
			m.PriorValue = ptr(pv.Magnitude)

			if pv.Magnitude != 0 {
				m.ChangeAbsolute = ptr(round2(cur.Magnitude - pv.Magnitude))
				pct := (cur.Magnitude - pv.Magnitude) / math.Abs(pv.Magnitude) * 100
				m.ChangePercent = ptr(round1(pct))

				switch {
				case pct > 1:
					m.Trend = model.TrendUp
				case pct < -1:
					m.Trend = model.TrendDown
				}
			}
		}

		a.metrics = append(a.metrics, m)
	}

	return a.metrics
}

// Table renders the metrics as a fixed-column markdown table, or an empty
// string when there are none.
func (a *Analyzer) Table() string {
	if len(a.metrics) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n### Year-over-Year Analysis\n\n")
	b.WriteString("| Metric | Current Year | Prior Year | Change | % Change | Trend |\n")
	b.WriteString("|--------|--------------|------------|--------|----------|-------|\n")

	for _, m := range a.metrics {
		current := fmt.Sprintf("%.1f%s", m.CurrentValue, m.Unit)

		prior := "N/A"
		if m.PriorValue != nil {
			prior = fmt.Sprintf("%.1f%s", *m.PriorValue, m.Unit)
		}

		change := "N/A"
		if m.ChangeAbsolute != nil {
			if m.Unit == string(finparse.UnitPercent) {
				// Point change between two percentages, not a percent change.
				change = fmt.Sprintf("%+.1fpp", *m.ChangeAbsolute)
			} else {
				change = fmt.Sprintf("%+.1f%s", *m.ChangeAbsolute, m.Unit)
			}
		}

		pctChange := "N/A"
		if m.ChangePercent != nil {
			pctChange = fmt.Sprintf("%+.1f%%", *m.ChangePercent)
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			m.Name, current, prior, change, pctChange, trendMarker(m.Trend))
	}

	return b.String()
}

// Narrative summarizes the metrics in prose: a revenue-labeled metric first
// when present, then notable increases and decreases beyond the significance
// threshold.
func (a *Analyzer) Narrative() string {
	if len(a.metrics) == 0 {
		return ""
	}

	var parts []string

	for _, m := range a.metrics {
		if !strings.Contains(strings.ToLower(m.Name), "revenue") || m.ChangePercent == nil {
			continue
		}
		pct := *m.ChangePercent
		switch {
		case pct > 20:
			parts = append(parts, fmt.Sprintf("Strong revenue growth of %.1f%% year-over-year", pct))
		case pct > 0:
			parts = append(parts, fmt.Sprintf("Revenue increased %.1f%% compared to prior year", pct))
		default:
			parts = append(parts, fmt.Sprintf("Revenue declined %.1f%% from prior year", math.Abs(pct)))
		}
		break
	}

	var up, down []string
	for _, m := range a.metrics {
		if m.ChangePercent == nil {
			continue
		}
		switch {
		case *m.ChangePercent > significantPct && len(up) < 3:
			up = append(up, fmt.Sprintf("%s (+%.1f%%)", m.Name, *m.ChangePercent))
		case *m.ChangePercent < -significantPct && len(down) < 3:
			down = append(down, fmt.Sprintf("%s (%.1f%%)", m.Name, *m.ChangePercent))
		}
	}
	if len(up) > 0 {
		parts = append(parts, "Notable increases: "+strings.Join(up, ", "))
	}
	if len(down) > 0 {
		parts = append(parts, "Notable decreases: "+strings.Join(down, ", "))
	}

	if len(parts) == 0 {
		return "Year-over-year data available for comparison"
	}
	return strings.Join(parts, "; ")
}

func trendMarker(t model.Trend) string {
	switch t {
	case model.TrendUp:
		return "up"
	case model.TrendDown:
		return "down"
	}
	return "flat"
}

func ptr(f float64) *float64 { return &f }

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func round2(f float64) float64 { return math.Round(f*100) / 100 }
