// Package citation assigns stable source numbers to retrieved passages and
// renders them for prompts and reference lists.
package citation

import (
	"fmt"
	"strings"

	"github.com/sells-group/disclosure-cli/internal/model"
	"github.com/sells-group/disclosure-cli/pkg/retrieval"
)

// excerptLimit caps the stored excerpt length per citation.
const excerptLimit = 200

// Manager tracks the citations for one generation call. IDs are assigned
// strictly in add order starting at 1, never by relevance, so a [Source k]
// marker in generated text stays unambiguous even if the underlying index
// re-ranks between calls. Not safe for concurrent use.
type Manager struct {
	citations []model.Citation
	counter   int
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Reset clears state for the next generation call.
func (m *Manager) Reset() {
	m.citations = nil
	m.counter = 0
}

// Citations returns the current citation set in ID order.
func (m *Manager) Citations() []model.Citation {
	return m.citations
}

// Add attributes a passage, assigns it the next source ID, and returns that ID.
func (m *Manager) Add(p retrieval.Passage, relevance float64) int {
	m.counter++

	excerpt := p.Text
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit] + "..."
	}

	m.citations = append(m.citations, model.Citation{
		ID:             m.counter,
		Company:        orUnknown(p.Company),
		Section:        orUnknown(p.Section),
		FilingDate:     orUnknown(p.FilingDate),
		ChunkIndex:     p.ChunkIndex,
		RelevanceScore: relevance,
		Excerpt:        excerpt,
	})
	return m.counter
}

// FormatForPrompt resets state, attributes each passage in order, and returns
// the joined context block the text-generation capability consumes, plus the
// ID-to-citation map for cross-referencing [Source k] markers.
func (m *Manager) FormatForPrompt(passages []retrieval.Passage) (string, map[int]model.Citation) {
	m.Reset()

	citationMap := make(map[int]model.Citation, len(passages))
	parts := make([]string, 0, len(passages))

	for _, p := range passages {
		id := m.Add(p, p.Score)
		citationMap[id] = m.citations[len(m.citations)-1]

		header := fmt.Sprintf("[Source %d] (%s - %s - Filed: %s)",
			id, orUnknown(p.Company), orUnknown(p.Section), orUnknown(p.FilingDate))
		parts = append(parts, header+"\n"+p.Text)
	}

	return strings.Join(parts, "\n\n---\n\n"), citationMap
}

// References renders a numbered reference list for the current citation set,
// or an empty string when there are no citations.
func (m *Manager) References() string {
	if len(m.citations) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n---\n\n## Sources\n\n")
	for _, c := range m.citations {
		fmt.Fprintf(&b, "**[%d]** %s - %s (Filed: %s)\n", c.ID, c.Company, c.Section, c.FilingDate)
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
