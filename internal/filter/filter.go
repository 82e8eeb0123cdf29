// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter screens fetched papers for relevance and basic quality
// before the expensive scoring rounds.
package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Stage is the fan-out stage name used in logs and metrics.
const Stage = "filter_papers"

// ErrAllFailed is returned when no paper could be judged.
var ErrAllFailed = errors.New("filter: every filter call failed")

const instructions = `You are a paper quality filter.

Given a paper (title, abstract, metadata):
1. Evaluate relevance to the research query.
2. Check paper quality:
   - Is the abstract substantive?
   - Does it describe a clear methodology?
   - Does it present results or contributions?
3. Decide whether to accept the paper, explain briefly, and rate its relevance from 0 to 10.

Be selective. Only accept high-quality, clearly relevant papers.`

var messageTmpl = template.Must(template.New("filter").Parse(`Query: {{.Query}}

Paper:
- ID: {{.Paper.ID}}
- Title: {{.Paper.Title}}
- Authors: {{.Authors}}
- Categories: {{.Categories}}
- Published: {{.Paper.Published.Format "2006-01-02"}}

Abstract:
{{.Paper.Abstract}}
`))

var schema = llm.Schema{
	Name:        "filter_result",
	Description: "accept or reject one paper",
	JSON: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"accept":          map[string]any{"type": "boolean"},
			"reasoning":       map[string]any{"type": "string"},
			"relevance_score": map[string]any{"type": "number", "minimum": 0, "maximum": 10},
		},
		"required": []string{"accept", "reasoning", "relevance_score"},
	},
}

// Filter runs one fresh filter agent per paper.
type Filter struct {
	Provider llm.Provider
	Limit    int
	Logger   zerolog.Logger
}

// Outcome is the filter stage's output.
type Outcome struct {
	Accepted []types.Paper
	Results  []types.FilterResult
	Failed   int
}

// Filter judges every paper concurrently and returns the accepted ones in
// input order. A paper whose call fails is neither accepted nor counted in
// Results.
func (f *Filter) Filter(ctx context.Context, query string, papers []types.Paper) (Outcome, error) {
	log := f.Logger.With().Str("stage", Stage).Logger()
	log.Info().Int("papers", len(papers)).Msg("filter_papers.start")
	if len(papers) == 0 {
		return Outcome{}, nil
	}

	results := fanout.Run(ctx, fanout.Config{Stage: Stage, Limit: f.Limit, Logger: log}, papers,
		func(p types.Paper) string { return p.ID },
		func(ctx context.Context, p types.Paper) (types.FilterResult, error) {
			return f.judge(ctx, query, p)
		})

	var out Outcome
	for _, r := range results {
		if !r.OK() {
			out.Failed++
			continue
		}
		out.Results = append(out.Results, r.Value)
		if r.Value.Accept {
			out.Accepted = append(out.Accepted, r.Item)
		}
	}
	if out.Failed == len(papers) {
		return out, fmt.Errorf("%w (%d papers)", ErrAllFailed, len(papers))
	}
	log.Info().Int("accepted", len(out.Accepted)).Int("rejected", len(out.Results)-len(out.Accepted)).
		Int("errors", out.Failed).Msg("filter_papers.complete")
	return out, nil
}

func (f *Filter) judge(ctx context.Context, query string, p types.Paper) (types.FilterResult, error) {
	msg, err := renderMessage(query, p)
	if err != nil {
		return types.FilterResult{}, err
	}
	agent := llm.NewAgent(f.Provider, llm.AgentConfig{
		Name:         "paper_filter",
		Instructions: instructions,
		Temperature:  0.1,
		Logger:       f.Logger,
	})
	var res types.FilterResult
	if err := agent.GenerateStructured(ctx, msg, schema, &res); err != nil {
		return types.FilterResult{}, err
	}
	res.PaperID = p.ID
	return res, nil
}

func renderMessage(query string, p types.Paper) (string, error) {
	var buf bytes.Buffer
	err := messageTmpl.Execute(&buf, struct {
		Query      string
		Paper      types.Paper
		Authors    string
		Categories string
	}{query, p, strings.Join(p.Authors, ", "), strings.Join(p.Categories, ", ")})
	if err != nil {
		return "", fmt.Errorf("rendering filter prompt: %w", err)
	}
	return buf.String(), nil
}
