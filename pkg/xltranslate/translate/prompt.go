package translate

import (
	"fmt"
	"strings"
)

// Default language pair.
const (
	DefaultSourceLanguage = "English"
	DefaultTargetLanguage = "Simplified Chinese"
)

// DefaultGuidelines describe the translator role used when no custom
// instruction is configured.
const DefaultGuidelines = `## Role
You are a professional translator localizing spreadsheet reports: cell labels, table headers,
notes, chart titles, series names and axis titles.

## Style
- Keep the output concise; cells and chart labels have little room.
- Do not translate product names, brand names, code identifiers, URLs or units.
- Keep numbers, dates, percentages and placeholders exactly as written.
- Use the terminology a domain professional would use, not word-for-word renderings.`

// technicalRules are appended to every system instruction. The dispatcher
// depends on them to map replies back to batch keys.
const technicalRules = `## STRICT RULES (TECHNICAL)
1. The user message is a JSON object. Keep every JSON key unchanged.
2. Translate only the values.
3. Return ONLY a valid JSON object with the same keys, without markdown formatting or any text outside the JSON.`

// SystemPrompt builds the system instruction for a language pair. An empty
// guidelines string selects DefaultGuidelines.
func SystemPrompt(source, target, guidelines string) string {
	if source == "" {
		source = DefaultSourceLanguage
	}
	if target == "" {
		target = DefaultTargetLanguage
	}
	if strings.TrimSpace(guidelines) == "" {
		guidelines = DefaultGuidelines
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate every value of the JSON object from %s into %s.\n\n", source, target)
	b.WriteString(strings.TrimSpace(guidelines))
	b.WriteString("\n\n")
	b.WriteString(technicalRules)
	return b.String()
}
