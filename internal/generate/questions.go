package generate

import (
	"fmt"
	"strings"
)

// MissingData lists the inputs a complete disclosure draft needs, grouped by
// category.
type MissingData struct {
	Financial   []string
	Business    []string
	Operational []string
}

// RequiredData returns the standard checklist of inputs for a complete
// Business + MD&A draft.
func RequiredData() MissingData {
	return MissingData{
		Financial: []string{
			"Total revenue and year-over-year growth rate",
			"Revenue breakdown by segment or product line",
			"Operating income/loss and operating margin",
			"Net income/loss",
			"Adjusted EBITDA (if applicable)",
			"Free cash flow",
			"Cash and cash equivalents balance",
			"Total debt balance",
			"Major capital expenditures",
		},
		Business: []string{
			"New products or services launched in the fiscal year",
			"Products or services discontinued",
			"Market expansions or new geographic entries",
			"Major partnerships or joint ventures",
			"Key acquisitions or divestitures",
		},
		Operational: []string{
			"Changes in pricing or business model",
			"Changes in operational policies",
			"Significant operational events (e.g., outages, incidents)",
			"Regulatory actions or legal proceedings",
			"Key risk factors that emerged during the year",
		},
	}
}

// ClarifyingQuestions renders the missing-data checklist as a request the
// caller can show to the user.
func ClarifyingQuestions(ticker, fiscalYear string) string {
	missing := RequiredData()

	var b strings.Builder
	fmt.Fprintf(&b, "To complete the MD&A section for %s's Form 10-K for fiscal year %s, I need the following information:\n\n", ticker, fiscalYear)

	b.WriteString("**Financial Data Required:**\n")
	for _, item := range missing.Financial {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	b.WriteString("\n**Business Updates:**\n")
	for _, item := range missing.Business {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	b.WriteString("\n**Operational Information:**\n")
	for _, item := range missing.Operational {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	b.WriteString(`
You can provide this information in any format: plain text with numbers, a markdown table, an HTML table, or pasted financial statements.`)

	return b.String()
}
