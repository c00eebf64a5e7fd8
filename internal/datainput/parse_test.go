package datainput

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/disclosure-cli/internal/yoy"
)

func TestParseFinancialData_MarkdownTable(t *testing.T) {
	text := `Here are the numbers:

| Metric | FY2025 | FY2024 |
|--------|--------|--------|
| Revenue | $130.5B | $60.9B |
| Operating Income | $81.5B | $33.0B |
`
	data := ParseFinancialData(text)

	require.NotNil(t, data)
	assert.Equal(t, "$130.5B", data.Fields["Revenue"])
	assert.Equal(t, "$60.9B", data.Fields["Revenue"+yoy.PriorSuffix])
	assert.Equal(t, "$81.5B", data.Fields["Operating Income"])
	assert.Equal(t, "$33.0B", data.Fields["Operating Income"+yoy.PriorSuffix])
	assert.Equal(t, strings.TrimSpace(text), data.Narrative)
}

func TestParseFinancialData_TwoColumnTable(t *testing.T) {
	text := `| Metric | FY2025 |
|---|---|
| Revenue | $130.5B |
`
	data := ParseFinancialData(text)

	assert.Equal(t, "$130.5B", data.Fields["Revenue"])
	_, hasPrior := data.Fields["Revenue"+yoy.PriorSuffix]
	assert.False(t, hasPrior)
}

func TestParseFinancialData_HTMLTable(t *testing.T) {
	html := `<table>
<tr><th>Metric</th><th>FY2025</th><th>FY2024</th></tr>
<tr><td>Revenue</td><td>$130.5B</td><td>$60.9B</td></tr>
<tr><td>Margin</td><td>62%</td><td>54%</td></tr>
</table>`
	data := ParseFinancialData(html)

	assert.Equal(t, "$130.5B", data.Fields["Revenue"])
	assert.Equal(t, "$60.9B", data.Fields["Revenue"+yoy.PriorSuffix])
	assert.Equal(t, "62%", data.Fields["Margin"])
}

func TestParseFinancialData_PlainTextPatterns(t *testing.T) {
	text := "Revenue: $26.97 billion this year.\nGrowth: 126%\nAcquired: Run:ai for $700M"
	data := ParseFinancialData(text)

	assert.Equal(t, "26.97 billion", data.Fields["Revenue"])
	assert.Equal(t, "126", data.Fields["Growth"])
	assert.NotEmpty(t, data.Fields["Acquired"])
}

func TestParseFinancialData_TablesWinOverPatterns(t *testing.T) {
	text := `| Metric | FY2025 |
|---|---|
| Revenue | $130.5B |

Revenue: 999 million mentioned in passing.`
	data := ParseFinancialData(text)

	assert.Equal(t, "$130.5B", data.Fields["Revenue"])
}

func TestParseFinancialData_EmptyInput(t *testing.T) {
	data := ParseFinancialData("")
	assert.True(t, data.Empty())
}

func TestParseTicker(t *testing.T) {
	registry := map[string]string{
		"NVDA": "NVIDIA Corporation",
		"KO":   "The Coca-Cola Company",
		"MSFT": "Microsoft Corporation",
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"ticker symbol", "Draft the 10-K for NVDA please", "NVDA"},
		{"lowercase ticker", "what about nvda?", "NVDA"},
		{"company name", "The Coca-Cola Company results", "KO"},
		{"word boundary", "KODAK is not a registry company", ""},
		{"no match", "some unrelated text", ""},
		{"deterministic on multiple matches", "Compare NVDA and MSFT", "MSFT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTicker(tt.text, registry))
		})
	}
}

func TestParseFiscalYear(t *testing.T) {
	assert.Equal(t, "2025", ParseFiscalYear("fiscal year 2025 results"))
	assert.Equal(t, "2024", ParseFiscalYear("FY2024"))
	assert.Empty(t, ParseFiscalYear("no year here"))
}
