// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/papertools"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// maxFullText caps how much cached full text is inlined into a review prompt.
const maxFullText = 60000

var instructionsTmpl = template.Must(template.New("scorer").Parse(`You are a paper reviewer (Round {{.}}).

Review the paper the way a program committee member at a top venue would. Score it on these dimensions (0-10 scale):
1. Relevance: how relevant is it to the research query?
2. Novelty: how original is the contribution?
3. Soundness: how sound is the methodology and evaluation?
4. Clarity: how clear is the presentation?
5. Significance: how much will it matter to the field?

Then give an overall score (0-10), a brief summary, the main strengths, the main weaknesses, and a recommendation that begins with "Accept" or "Reject" followed by a short reason.

Be objective and consistent. Judge based on the paper itself.`))

var reviewTmpl = template.Must(template.New("review").Parse(`Review paper ID: {{.Paper.ID}} for the research query: {{.Query}}

Paper metadata:
- Title: {{.Paper.Title}}
- Authors: {{.Authors}}
- Categories: {{.Categories}}
- Published: {{.Paper.Published.Format "2006-01-02"}}

Abstract:
{{.Paper.Abstract}}
{{if .FullText}}
Full text:
{{.FullText}}

Task: Evaluate the paper using the full text above. You may call {{.ContentTool}} to re-read specific pages. Provide a complete evaluation with all scores and assessments.
{{- else}}
Task: Use {{.PageCountTool}} and {{.ContentTool}} to read the paper content, then evaluate it according to your scoring criteria. Provide a complete evaluation with all scores and assessments.
{{- end}}
`))

var formatTmpl = template.Must(template.New("format").Parse(`Based on the following paper evaluation, provide a response in JSON format matching the score_result schema.

Evaluation:
{{.}}

Return ONLY valid JSON. All score fields (relevance, novelty, soundness, clarity, significance, overall_score) must be numbers between 0-10. All text fields (summary, strengths, weaknesses, recommendation) must be non-empty strings. Set decision to "accept" or "reject" to match the recommendation.`))

var scoreSchema = func() llm.Schema {
	num := map[string]any{"type": "number", "minimum": 0, "maximum": 10}
	str := map[string]any{"type": "string", "minLength": 1}
	return llm.Schema{
		Name:        "score_result",
		Description: "one reviewer's scores for one paper",
		JSON: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"relevance":      num,
				"novelty":        num,
				"soundness":      num,
				"clarity":        num,
				"significance":   num,
				"overall_score":  num,
				"summary":        str,
				"strengths":      str,
				"weaknesses":     str,
				"recommendation": str,
				"decision":       map[string]any{"type": "string", "enum": []string{"accept", "reject"}},
			},
			"required": []string{
				"relevance", "novelty", "soundness", "clarity", "significance",
				"overall_score", "summary", "strengths", "weaknesses", "recommendation",
			},
		},
	}
}()

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func reviewMessage(query string, p types.Paper, fullText string) (string, error) {
	if clipped, cut := llm.ClipText(fullText, maxFullText); cut {
		fullText = clipped + "\n[truncated]"
	}
	return render(reviewTmpl, struct {
		Query         string
		Paper         types.Paper
		Authors       string
		Categories    string
		FullText      string
		ContentTool   string
		PageCountTool string
	}{
		Query:         query,
		Paper:         p,
		Authors:       strings.Join(p.Authors, ", "),
		Categories:    strings.Join(p.Categories, ", "),
		FullText:      fullText,
		ContentTool:   papertools.ToolPaperContent,
		PageCountTool: papertools.ToolPageCount,
	})
}
