package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/disclosure-cli/internal/model"
)

// retrievalQuery builds the passage search query for a section kind.
func retrievalQuery(kind model.SectionKind, ticker string) string {
	switch kind {
	case model.SectionMDA:
		return fmt.Sprintf("management discussion analysis financial performance revenue operations results for %s", ticker)
	default:
		return fmt.Sprintf("company business description operations products services markets for %s", ticker)
	}
}

// buildPrompt assembles the generation prompt: retrieved context, any
// provided data (narrative appended verbatim), and the section-specific
// structural instructions.
func buildPrompt(t Templates, kind model.SectionKind, ticker, fiscalYear, context string, data *model.ProvidedData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following context from prior 10-K filings%s, generate an updated %q section for %s's Form 10-K for fiscal year %s.\n\n",
		providedClause(data), kind.Title(), ticker, fiscalYear)

	b.WriteString("CONTEXT FROM PRIOR FILINGS:\n")
	b.WriteString(context)
	b.WriteString("\n")

	if !data.Empty() {
		b.WriteString("\nFINANCIAL AND BUSINESS DATA PROVIDED BY USER:\n")

		names := make([]string, 0, len(data.Fields))
		for name := range data.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %s\n", name, data.Fields[name])
		}

		if data.Narrative != "" {
			b.WriteString("\nRaw user input (extract any additional relevant data):\n")
			b.WriteString(data.Narrative)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch kind {
	case model.SectionMDA:
		b.WriteString(t.MDAInstructions)
	default:
		b.WriteString(t.BusinessInstructions)
	}

	fmt.Fprintf(&b, "\n\nGenerate the %s section:", kind.Title())
	return b.String()
}

// buildRevisionPrompt assembles the prompt for revising an already drafted
// section with user-provided updates.
func buildRevisionPrompt(kind model.SectionKind, fiscalYear, originalText string, updates map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is the original %s section draft:\n\n%s\n\n", kind.Title(), originalText)
	fmt.Fprintf(&b, "The user has provided the following updates for fiscal year %s:\n", fiscalYear)

	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, updates[name])
	}

	b.WriteString(`
INSTRUCTIONS:
1. Update the section to incorporate the new information
2. Maintain the formal, objective tone expected in SEC filings
3. Keep the same structure but add/modify content as needed
4. Ensure all updates are factually incorporated
5. Do not remove existing accurate information unless contradicted
`)
	fmt.Fprintf(&b, "\nGenerate the updated %s section:", kind.Title())
	return b.String()
}

func providedClause(data *model.ProvidedData) string {
	if data.Empty() {
		return ""
	}
	return " and user-provided financial data"
}
