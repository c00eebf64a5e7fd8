package generate

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Templates holds the prompt text blocks. Any field left empty in an
// override file keeps its default.
type Templates struct {
	System               string `yaml:"system"`
	BusinessInstructions string `yaml:"business_instructions"`
	MDAInstructions      string `yaml:"mda_instructions"`
}

const defaultSystem = `You are a securities lawyer assistant helping to draft SEC Form 10-K filings. Write in the formal, objective tone expected in SEC filings and never invent facts or figures.`

const defaultBusinessInstructions = `INSTRUCTIONS:
1. Write in the formal, objective tone expected in SEC filings
2. Structure the section with appropriate subsections (e.g., Overview, Products/Services, Markets, Competition, etc.)
3. Base your content on the retrieved context - do NOT hallucinate facts or figures
4. When using information from a specific source, include the source number in brackets, e.g., [Source 1]
5. If you need to reference specific numbers or metrics, clearly indicate they are from prior year filings
6. Keep the narrative factual and compliant with SEC disclosure requirements`

const defaultMDAInstructions = `INSTRUCTIONS:
1. Write in the formal, objective tone expected in SEC filings
2. Structure the MD&A with standard subsections:
   - Overview
   - Results of Operations (include segment breakdowns if provided)
   - Liquidity and Capital Resources
   - Critical Accounting Estimates (if applicable)
3. IMPORTANT: Use the user-provided financial data as the primary source for current year figures
4. Compare current year performance to prior year where appropriate
5. When citing information from prior filings, include the source number in brackets, e.g., [Source 1]
6. Explain drivers of performance changes based on business and operational inputs
7. Do NOT hallucinate financial figures - only use what is provided or clearly labeled as prior year data
8. If critical data is missing, note what would typically be included
9. Incorporate any business updates (new products, acquisitions, market expansions) into the narrative
10. Address any operational changes or events mentioned by the user`

// DefaultTemplates returns the built-in prompt templates.
func DefaultTemplates() Templates {
	return Templates{
		System:               defaultSystem,
		BusinessInstructions: defaultBusinessInstructions,
		MDAInstructions:      defaultMDAInstructions,
	}
}

// LoadTemplates reads a YAML override file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrapf(err, "generate: read templates %s", path)
	}

	var override Templates
	if err := yaml.Unmarshal(b, &override); err != nil {
		return t, eris.Wrapf(err, "generate: parse templates %s", path)
	}

	if override.System != "" {
		t.System = override.System
	}
	if override.BusinessInstructions != "" {
		t.BusinessInstructions = override.BusinessInstructions
	}
	if override.MDAInstructions != "" {
		t.MDAInstructions = override.MDAInstructions
	}
	return t, nil
}
