// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Subject}}</title>
  <style>
    body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; line-height: 1.5; margin: 24px; }
    .meta p { margin: 6px 0; }
    .paper { padding: 14px 0; }
    .paper h3 { margin: 0 0 10px 0; }
    .kv div { margin: 3px 0; }
    hr { border: 0; border-top: 1px solid #ddd; margin: 14px 0; }
    code { background: #f6f8fa; padding: 2px 4px; border-radius: 4px; }
  </style>
</head>
<body>
<h1>{{.Subject}}</h1>
<div class="meta">
<p><b>For</b>: {{.UserName}}</p>
{{- range $i, $r := .Results}}
<p><b>Query {{inc $i}}</b>: {{$r.Query}}</p>
<p><b>Categories</b>: {{join $r.Categories}}</p>
<p><b>Total Papers Analyzed</b>: {{$r.TotalPapers}}</p>
<p><b>Accepted Papers</b>: {{$r.AcceptedPapers}}</p>
{{- end}}
</div>
<hr />
{{- range .Results}}
<h2>Top {{len .Summaries}} papers for the topic: {{.Query}}</h2>
{{- range $i, $p := .Papers}}
<div class="paper">
<h3>{{inc $i}}. <a href="{{$p.Link}}" target="_blank" rel="noopener noreferrer">{{$p.Title}}</a></h3>
<div class="kv">
<div><b>arXiv ID</b>: <code>{{$p.ID}}</code></div>
<div><b>Score</b>: {{printf "%.2f" $p.Score}}/10</div>
</div>
{{- if $p.Short}}
<p><b><i>Brief Summary</i></b>: {{$p.Short.Summary}}</p>
<p><b><i>Strengths</i></b>: {{$p.Short.Strengths}}</p>
<p><b><i>Weaknesses</i></b>: {{$p.Short.Weaknesses}}</p>
{{- end}}
{{- range $p.Sections}}
<h4>{{.Title}}</h4>
{{.Body}}
{{- end}}
</div>
<hr />
{{- end}}
{{- end}}
</body>
</html>
`))

type htmlSection struct {
	Title string
	Body  template.HTML
}

type htmlPaper struct {
	ID       string
	Title    string
	Link     string
	Score    float64
	Short    *types.ScoreResult
	Sections []htmlSection
}

type htmlResult struct {
	types.WorkflowResult
	Papers []htmlPaper
}

// RenderHTML renders the digest as a standalone HTML document. Sections use
// their reformatted HTML when present and goldmark-rendered markdown
// otherwise; both pass through the sanitizer.
func RenderHTML(in Input) (string, error) {
	results := make([]htmlResult, 0, len(in.Results))
	for _, r := range in.Results {
		hr := htmlResult{WorkflowResult: r}
		for _, s := range r.Summaries {
			p := htmlPaper{
				ID:    s.Score.Paper.ID,
				Title: s.Score.Paper.Title,
				Link:  s.Score.Paper.PDFLink,
				Score: s.Score.AvgScore,
			}
			if in.SummaryType.IncludesShort() {
				round1 := s.Score.Round1
				p.Short = &round1
			}
			if in.SummaryType.IncludesDetailed() {
				for _, sec := range types.SectionOrder {
					body, err := sectionHTML(s, sec)
					if err != nil {
						return "", fmt.Errorf("rendering %s of %s: %w", sec, p.ID, err)
					}
					p.Sections = append(p.Sections, htmlSection{Title: sec.Title(), Body: body})
				}
			}
			hr.Papers = append(hr.Papers, p)
		}
		results = append(results, hr)
	}

	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, struct {
		Subject  string
		UserName string
		Results  []htmlResult
	}{Subject, in.UserName, results})
	if err != nil {
		return "", fmt.Errorf("rendering html report: %w", err)
	}
	return buf.String(), nil
}

func sectionHTML(s types.PaperSummary, sec types.Section) (template.HTML, error) {
	if h, ok := s.HTMLSections[sec]; ok && h != "" {
		return template.HTML(summarize.Sanitizer.Sanitize(h)), nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s.Sections[sec]), &buf); err != nil {
		return "", err
	}
	return template.HTML(summarize.Sanitizer.SanitizeBytes(buf.Bytes())), nil
}
