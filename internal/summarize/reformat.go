// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// ReformatStage is the stage name used in logs.
const ReformatStage = "html_formatting"

const formatterInstructions = `You are an HTML formatter agent.
Convert one section of a research paper summary written in markdown into a well-structured HTML snippet suitable for embedding in an email or web page.

FORMATTING RULES:
- Headings: # to <h1>, ## to <h2>, ### to <h3>. Preserve the hierarchy.
- Paragraphs: plain text blocks become <p>. Do not nest block elements inside <p>.
- Lists: "-" or "*" become <ul><li>, numbered lists become <ol><li>. Preserve nesting.
- Emphasis: **bold** becomes <strong>, *italic* becomes <em>.
- Links: [text](url) becomes <a href="url" target="_blank" rel="noopener noreferrer">text</a>.
- Code: inline code becomes <code>, code blocks become <pre><code>. No syntax highlighting.
- LaTeX math must stay MathJax-compatible: $...$ becomes \(...\), $$...$$ becomes \[...\]. Do not escape or simplify LaTeX.

OUTPUT RULES:
- Preserve all content and meaning. Do not add or omit anything.
- The output must be valid HTML wrapped in <div class="section">...</div>.
- Return ONLY the HTML snippet, with no code fences and no commentary.`

var formatPrompts = map[types.Section]string{
	types.SectionResearchGap:     "Format the research gap into a HTML section.",
	types.SectionRelatedStudies:  "Format the related studies into a HTML section.",
	types.SectionMethodology:     "Format the methodology into a HTML section.",
	types.SectionExperiments:     "Format the experiments into a HTML section.",
	types.SectionFurtherResearch: "Format the further research into a HTML section.",
	types.SectionOverallSummary:  "Format the overall summary into a HTML section.",
}

// Sanitizer is the policy applied to model-written HTML.
var Sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("div", "span", "code", "pre")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return p
}()

// Reformatter converts summary sections to HTML.
type Reformatter struct {
	Provider llm.Provider
	Limit    int
	Logger   zerolog.Logger
}

// Reformat returns copies of summaries with HTMLSections filled. A section
// that fails to convert is left out of HTMLSections so renderers fall back
// to its markdown.
func (r *Reformatter) Reformat(ctx context.Context, summaries []types.PaperSummary) []types.PaperSummary {
	log := r.Logger.With().Str("stage", ReformatStage).Logger()
	log.Info().Int("total_summaries", len(summaries)).Msg("html_formatting.start")

	results := fanout.Run(ctx, fanout.Config{Stage: ReformatStage, Limit: r.Limit, Logger: log}, summaries,
		func(s types.PaperSummary) string { return s.Score.PaperID },
		func(ctx context.Context, s types.PaperSummary) (types.PaperSummary, error) {
			return r.reformatOne(ctx, log.With().Str("paper_id", s.Score.PaperID).Logger(), s), nil
		})

	out := make([]types.PaperSummary, len(results))
	converted := 0
	for i, res := range results {
		if !res.OK() {
			out[i] = summaries[i]
			continue
		}
		out[i] = res.Value
		converted += len(res.Value.HTMLSections)
	}
	log.Info().Int("total_summaries", len(summaries)).Int("sections_converted", converted).
		Msg("html_formatting.complete")
	return out
}

func (r *Reformatter) reformatOne(ctx context.Context, log zerolog.Logger, s types.PaperSummary) types.PaperSummary {
	agent := llm.NewAgent(r.Provider, llm.AgentConfig{
		Name:         "html_formatter",
		Instructions: formatterInstructions,
		Temperature:  0.2,
		MaxTokens:    16384,
		Logger:       log,
	})

	html := make(types.Sections, len(types.SectionOrder))
	for _, sec := range types.SectionOrder {
		md := s.Sections[sec]
		if strings.TrimSpace(md) == "" {
			continue
		}
		agent.ClearHistory()
		text, err := agent.GenerateText(ctx, formatPrompts[sec]+"\n\n"+md)
		if err != nil {
			log.Warn().Str("field", string(sec)).Err(err).Msg("html_formatting.format_html_error")
			continue
		}
		clean := Sanitizer.Sanitize(stripFence(llm.StripThinking(text)))
		if strings.TrimSpace(clean) == "" {
			log.Warn().Str("field", string(sec)).Msg("html_formatting.empty_html")
			continue
		}
		html[sec] = clean
	}

	out := s
	out.Sections = make(types.Sections, len(s.Sections))
	for k, v := range s.Sections {
		out.Sections[k] = v
	}
	if len(html) > 0 {
		out.HTMLSections = html
	}
	return out
}

// stripFence removes a surrounding ``` or ```html fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
