// Package datainput extracts structured financial fields from the
// semi-structured text users paste in: markdown tables, HTML tables, or
// plain prose with recognizable metric patterns.
package datainput

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/disclosure-cli/internal/model"
	"github.com/sells-group/disclosure-cli/internal/yoy"
)

// kvPatterns match common metric mentions in plain text. Group 1 is the
// metric label, group 2 the value, optional group 3 a unit word.
var kvPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(revenue|sales)[\s:]*\$?([\d,.]+)\s*(billion|million|B|M)?`),
	regexp.MustCompile(`(?i)(growth|increase|decrease)[\s:]*(-?[\d,.]+)%?`),
	regexp.MustCompile(`(?i)(operating income|net income|EBITDA)[\s:]*\$?([\d,.]+)\s*(billion|million|B|M)?`),
	regexp.MustCompile(`(?i)(cash flow|FCF|free cash flow)[\s:]*\$?([\d,.]+)\s*(billion|million|B|M)?`),
	regexp.MustCompile(`(?i)(margin)[\s:]*(-?[\d,.]+)%`),
	regexp.MustCompile(`(?i)(segment|division)[\s:]+([^\n,]+)`),
	regexp.MustCompile(`(?i)(launched|discontinued|acquired|partnered)[\s:]+([^\n]+)`),
}

var yearRe = regexp.MustCompile(`20\d{2}`)

// ParseFinancialData extracts a ProvidedData from pasted user text. Tables
// contribute metric rows (second value column becomes the prior-year field);
// plain-text patterns fill in anything the tables missed. The full trimmed
// text is kept as the narrative.
func ParseFinancialData(text string) *model.ProvidedData {
	fields := make(map[string]string)

	lower := strings.ToLower(text)
	if strings.Contains(lower, "<table") || strings.Contains(lower, "<tr") {
		parseHTMLTables(text, fields)
	}
	if strings.Contains(text, "|") {
		parseMarkdownTables(text, fields)
	}

	for _, re := range kvPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			key := strings.TrimSpace(match[1])
			value := strings.TrimSpace(match[2])
			if len(match) > 3 && strings.TrimSpace(match[3]) != "" {
				value += " " + strings.TrimSpace(match[3])
			}
			if _, exists := fields[key]; !exists && key != "" && value != "" {
				fields[key] = value
			}
		}
	}

	return &model.ProvidedData{
		Fields:    fields,
		Narrative: strings.TrimSpace(text),
	}
}

// parseHTMLTables reads rows out of any <table> elements. The first
// non-empty row is treated as a header; later rows map the first cell to the
// remaining value columns.
func parseHTMLTables(html string, fields map[string]string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Debug("datainput: html parse failed", zap.Error(err))
		return
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		sawHeader := false
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})

			if !sawHeader {
				if anyNonEmpty(cells) {
					sawHeader = true
				}
				return
			}
			addRow(fields, cells)
		})
	})
}

// parseMarkdownTables reads pipe-delimited rows, skipping separator lines.
func parseMarkdownTables(text string, fields map[string]string) {
	sawHeader := false
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if !strings.Contains(line, "|") || strings.Contains(line, "---") {
			continue
		}

		var cells []string
		for _, c := range strings.Split(line, "|") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}

		if !sawHeader {
			if len(cells) > 0 {
				sawHeader = true
			}
			continue
		}
		addRow(fields, cells)
	}
}

// addRow maps a table row to fields: first cell is the metric, second the
// current value, third (when present) the prior-year value.
func addRow(fields map[string]string, cells []string) {
	if len(cells) < 2 || cells[0] == "" || cells[1] == "" {
		return
	}
	fields[cells[0]] = cells[1]
	if len(cells) >= 3 && cells[2] != "" {
		fields[cells[0]+yoy.PriorSuffix] = cells[2]
	}
}

// ParseTicker finds a known ticker (or company name) in free text. The
// registry maps ticker symbols to company names. Tickers are checked in
// sorted order so the result is deterministic when several match.
func ParseTicker(text string, registry map[string]string) string {
	tickers := make([]string, 0, len(registry))
	for t := range registry {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	upper := strings.ToUpper(text)
	for _, ticker := range tickers {
		name := registry[ticker]
		if containsWord(upper, ticker) || (name != "" && strings.Contains(upper, strings.ToUpper(name))) {
			return ticker
		}
	}
	return ""
}

// ParseFiscalYear finds a four-digit fiscal year in free text.
func ParseFiscalYear(text string) string {
	return yearRe.FindString(text)
}

func anyNonEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}

// containsWord reports whether s contains w bounded by non-letter characters,
// so ticker "KO" does not match inside "KODAK".
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isLetter(s[i-1])
		after := i+len(w) >= len(s) || !isLetter(s[i+len(w)])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
