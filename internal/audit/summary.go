package audit

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Summary condenses one session: event counts, the distinct tickers and
// fiscal years touched, and where the log persists.
type Summary struct {
	SessionID    string         `json:"session_id"`
	TotalEntries int            `json:"total_entries"`
	EventCounts  map[string]int `json:"event_counts"`
	Tickers      []string       `json:"tickers_processed"`
	FiscalYears  []string       `json:"fiscal_years"`
	LogFile      string         `json:"log_file"`
}

// Summary returns the session summary. Distinct lists are sorted so the
// summary is deterministic for a given entry sequence.
func (l *Logger) Summary() Summary {
	counts := make(map[string]int)
	tickers := make(map[string]struct{})
	years := make(map[string]struct{})

	for _, e := range l.entries {
		counts[string(e.EventType)]++
		if e.Ticker != "" {
			tickers[e.Ticker] = struct{}{}
		}
		if e.FiscalYear != "" {
			years[e.FiscalYear] = struct{}{}
		}
	}

	return Summary{
		SessionID:    l.sessionID,
		TotalEntries: len(l.entries),
		EventCounts:  counts,
		Tickers:      sortedKeys(tickers),
		FiscalYears:  sortedKeys(years),
		LogFile:      l.logFile,
	}
}

// Report renders a human-readable markdown timeline of the session.
func (l *Logger) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Audit Report\n\n")
	fmt.Fprintf(&b, "**Session ID:** %s\n", l.sessionID)
	fmt.Fprintf(&b, "**Created:** %s\n", l.createdAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Total Events:** %d\n\n", len(l.entries))
	b.WriteString("## Event Timeline\n\n")

	for _, e := range l.entries {
		fmt.Fprintf(&b, "### %s\n", e.Timestamp)
		fmt.Fprintf(&b, "**Type:** %s\n", e.EventType)
		if e.Ticker != "" {
			fmt.Fprintf(&b, "**Company:** %s\n", e.Ticker)
		}
		if e.FiscalYear != "" {
			fmt.Fprintf(&b, "**Fiscal Year:** %s\n", e.FiscalYear)
		}
		fmt.Fprintf(&b, "**Content Hash:** `%s`\n", e.ContentHash)

		switch e.EventType {
		case EventDataProvided:
			if fields, ok := e.Metadata["fields"].([]string); ok {
				fmt.Fprintf(&b, "**Data Fields Provided:** %s\n", strings.Join(fields, ", "))
			}
		case EventGeneration:
			fmt.Fprintf(&b, "**Section:** %v\n", e.Content["section"])
			fmt.Fprintf(&b, "**Text Length:** %v characters\n", e.Content["text_length"])
			if conf, ok := e.Metadata["confidence"].(map[string]any); ok {
				fmt.Fprintf(&b, "**Confidence:** %v\n", conf["overall"])
			}
		}

		b.WriteString("\n---\n\n")
	}

	return b.String()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
