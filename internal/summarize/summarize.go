// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize writes the six-section narrative for each selected paper
// and, when an HTML report needs it, reformats the sections into HTML.
package summarize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/papertools"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Stage is the stage name used in logs and metrics.
const Stage = "summarize_papers"

const maxFullText = 80000

// Prompts holds the question asked for each section, in generation order.
var Prompts = map[types.Section]string{
	types.SectionResearchGap:     "What problem or gap in existing knowledge is this paper trying to address? Provide a 2-5 sentence explanation.",
	types.SectionRelatedStudies:  "What existing studies or prior work are related to this problem? You may search for related papers using the available tools if needed. Provide a 2-5 sentence summary.",
	types.SectionMethodology:     "How does this paper tackle the issue? What approaches, methods, or techniques are used? Provide a detailed explanation of the methodology.",
	types.SectionExperiments:     "What kind of experiments were conducted in the paper? What datasets, benchmarks, or evaluations were used? Provide a detailed summary of the experiments and results.",
	types.SectionFurtherResearch: "What areas could be explored further? What are the limitations or open questions? You may search for recent work using the available tools if relevant. Provide a 5-10 points list discussion.",
	types.SectionOverallSummary:  "Provide a comprehensive summary of the paper covering all key aspects: problem, methods, experiments, results, and contributions. This should be 5-10 sentences.",
}

var instructionsTmpl = template.Must(template.New("summarizer").Parse(`You are an expert academic paper summarizer. Your task is to provide a comprehensive, structured summary of a research paper across six key dimensions.

You will be asked about these aspects one at a time, in this order:
1. Research Gap: what problem or gap in existing knowledge is the paper trying to address?
2. Related Studies: what existing studies or prior work are related to this problem?
3. Methodology: how does this paper tackle the issue?
4. Experiments: what experiments were conducted, on which datasets and benchmarks?
5. Further Research: what could be explored further, and what are the limitations?
6. Overall Summary: a comprehensive summary of the paper.

Reading the paper: if its content is not given to you, call {{.PageCount}} first and then read it with {{.Content}}, 5 to 10 pages at a time, starting with the abstract, introduction and method overview.

Related work: for Related Studies and Further Research you may call {{.Search}} to find related papers and {{.Content}} to read them. Read no more than 7 related papers.

Guidelines:
- Be specific: include concrete methods, datasets and results.
- Be concise: 2-5 sentences per section, except Overall Summary.
- Be accurate: base every statement on the paper content.
- Be critical: note limitations and assumptions.

Always answer in markdown. Format mathematical expressions in LaTeX ($...$ inline, $$...$$ display).`))

var introTmpl = template.Must(template.New("intro").Parse(`I need you to summarize this paper in detail.

Paper ID: {{.Paper.ID}}
Title: {{.Paper.Title}}
Authors: {{.Authors}}
Published: {{.Paper.Published.Format "2006-01-02"}}
{{if .Content}}
## Paper Content (Markdown)

{{.Content}}

---
{{else}}
The paper content is not attached; use the tools to read it.
{{end}}
I will ask about six aspects of this paper one by one. First aspect:

`))

// Summarizer writes PaperSummary values.
type Summarizer struct {
	Provider llm.Provider
	Tools    []llm.Tool
	Limit    int
	Logger   zerolog.Logger
}

// Summarize writes summaries for papers concurrently. Papers whose summary
// failed are left out; the rest keep input order.
func (s *Summarizer) Summarize(ctx context.Context, papers []types.AggregatedScoreResult) []types.PaperSummary {
	log := s.Logger.With().Str("stage", Stage).Logger()
	log.Info().Int("total_papers", len(papers)).Msg("summarize_papers.start")

	results := fanout.Run(ctx, fanout.Config{Stage: Stage, Limit: s.Limit, Logger: log}, papers,
		func(a types.AggregatedScoreResult) string { return a.PaperID },
		func(ctx context.Context, a types.AggregatedScoreResult) (types.PaperSummary, error) {
			plog := log.With().Str("paper_id", a.PaperID).Logger()
			sum, err := s.summarizeOne(ctx, plog, a)
			if err != nil {
				plog.Error().Err(err).Msg("summarize_papers.paper_error")
			}
			return sum, err
		})

	out := fanout.Successes(results)
	log.Info().Int("total_papers", len(papers)).Int("successful_summaries", len(out)).
		Int("errors", fanout.Failed(results)).Msg("summarize_papers.complete")
	return out
}

// summarizeOne asks the six questions in order on one fresh agent. The first
// question carries the paper context. Any failure abandons the paper.
func (s *Summarizer) summarizeOne(ctx context.Context, log zerolog.Logger, a types.AggregatedScoreResult) (types.PaperSummary, error) {
	log.Info().Str("title", truncate(a.Paper.Title, 60)).Bool("has_markdown", a.Paper.HasFullText()).
		Msg("summarize_papers.paper_start")

	var content string
	if a.Paper.HasFullText() {
		b, err := os.ReadFile(a.Paper.FullTextPath)
		if err != nil {
			log.Warn().Err(err).Msg("summarize_papers.markdown_unreadable")
		} else {
			content = truncate(string(b), maxFullText)
		}
	}

	instructions, err := render(instructionsTmpl, map[string]string{
		"Search":    papertools.ToolSearchArxiv,
		"Content":   papertools.ToolPaperContent,
		"PageCount": papertools.ToolPageCount,
	})
	if err != nil {
		return types.PaperSummary{}, err
	}
	intro, err := render(introTmpl, struct {
		Paper   types.Paper
		Authors string
		Content string
	}{a.Paper, a.Paper.ShortAuthors(5), content})
	if err != nil {
		return types.PaperSummary{}, err
	}

	agent := llm.NewAgent(s.Provider, llm.AgentConfig{
		Name:         "paper_summarizer",
		Instructions: instructions,
		Tools:        s.Tools,
		Temperature:  0.3,
		MaxTokens:    16384,
		Logger:       log,
	})

	sections := make(types.Sections, len(types.SectionOrder))
	for i, sec := range types.SectionOrder {
		msg := Prompts[sec]
		if i == 0 {
			msg = intro + msg
		}
		log.Debug().Str("field", string(sec)).Msg("summarize_papers.generating")
		text, err := agent.GenerateText(ctx, msg)
		if err != nil {
			return types.PaperSummary{}, fmt.Errorf("section %s: %w", sec, err)
		}
		sections[sec] = strings.TrimSpace(llm.StripThinking(text))
		log.Debug().Str("field", string(sec)).Int("length", len(text)).Msg("summarize_papers.field_complete")
	}

	log.Info().Msg("summarize_papers.paper_complete")
	return types.PaperSummary{Score: a, Sections: sections}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func truncate(s string, n int) string {
	s, _ = llm.ClipText(s, n)
	return s
}
