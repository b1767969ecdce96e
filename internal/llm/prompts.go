package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// Prompt registry keys.
const (
	PromptDocumentAnalysis   = "document_analysis"
	PromptDocumentComparison = "document_comparison"
	PromptJSONRepair         = "json_repair"
)

const analysisFormatInstructions = `Respond with a single JSON object with exactly these keys:
{
  "title": string,
  "author": string,
  "language": string,
  "document_type": string,
  "summary": [string, ...],
  "key_topics": [string, ...],
  "sentiment_tone": string
}
Use "" or [] when a value cannot be determined. Output JSON only, no prose.`

const comparisonFormatInstructions = `Respond with a single JSON object of the form:
{
  "rows": [
    {"page": string, "changes": string},
    ...
  ]
}
One row per page that differs; use "NO CHANGE" in "changes" for pages that match. Output JSON only, no prose.`

type analysisPromptData struct {
	FormatInstructions string
	DocumentText       string
}

type comparisonPromptData struct {
	FormatInstructions string
	CombinedDocs       string
}

type repairPromptData struct {
	FormatInstructions string
	ParseError         string
	Output             string
}

var promptRegistry = map[string]*template.Template{
	PromptDocumentAnalysis: template.Must(template.New(PromptDocumentAnalysis).Parse(
		`You are a highly capable assistant trained to analyse and summarize documents.

{{.FormatInstructions}}

Analyse this document:

{{.DocumentText}}`)),

	PromptDocumentComparison: template.Must(template.New(PromptDocumentComparison).Parse(
		`You will be provided with content from two documents, a reference and an actual version. Compare them page by page and report every difference: changed text, added or removed content, and altered values.

{{.FormatInstructions}}

Input documents:

{{.CombinedDocs}}`)),

	PromptJSONRepair: template.Must(template.New(PromptJSONRepair).Parse(
		`The following model output failed to parse as JSON ({{.ParseError}}).

{{.FormatInstructions}}

Rewrite the output below so it conforms exactly. Output JSON only.

{{.Output}}`)),
}

func renderPrompt(name string, data any) (string, error) {
	tmpl, ok := promptRegistry[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}
