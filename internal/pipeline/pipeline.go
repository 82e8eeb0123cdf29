// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the digest for one query: category selection,
// fetching, filtering, full-text enrichment, double-round scoring, top-K
// selection, summarization and optional HTML reformatting.
package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/categories"
	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/filter"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/internal/report"
	"github.com/pdiddy/paper-digest/internal/scoring"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Source searches for candidate papers.
type Source interface {
	Search(ctx context.Context, p search.Params) ([]types.Paper, error)
}

// Env is the per-run context passed to every stage. Build it once per run
// with NewEnv and discard it when the run ends.
type Env struct {
	RunID    string
	Logger   zerolog.Logger
	Provider llm.Provider
	Source   Source

	// Fetcher is optional; without it papers are judged from their
	// abstracts and tool access.
	Fetcher acquire.TextFetcher
	Tools   []llm.Tool

	// Exporter delivers reports in Run. It may be nil for RunQuery callers.
	Exporter *report.Exporter
	Metrics  *observability.Metrics

	// Concurrency caps in-flight model calls per stage. Zero is unlimited.
	Concurrency int

	// Reformat enables the HTML reformatting stage.
	Reformat bool

	Now func() time.Time
}

// NewEnv returns an Env with a fresh run id.
func NewEnv(logger zerolog.Logger, provider llm.Provider, source Source) *Env {
	return &Env{
		RunID:    uuid.NewString(),
		Logger:   logger,
		Provider: provider,
		Source:   source,
		Now:      time.Now,
	}
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// RunQuery runs every stage for q. A stage error aborts the query; item
// failures inside a stage only shrink that stage's output.
func RunQuery(ctx context.Context, env *Env, q types.QueryConfig) (types.WorkflowResult, error) {
	log := observability.WithQuery(env.Logger, env.RunID, q.Query)
	result := types.WorkflowResult{Query: q.Query}

	sel := &categories.Selector{Provider: env.Provider, Logger: log.With().Str("stage", "select_categories").Logger()}
	result.Categories = sel.Select(ctx, q.Query, q.Categories)

	from, to := q.Window(env.now())
	log.Info().Strs("categories", result.Categories).Time("from", from).Time("to", to).
		Int("limit", q.SearchLimit).Msg("fetch_papers.start")
	papers, err := env.Source.Search(ctx, search.Params{
		Categories: result.Categories,
		From:       from,
		To:         to,
		Limit:      q.SearchLimit,
	})
	if err != nil {
		return result, fmt.Errorf("fetching papers: %w", err)
	}
	result.TotalPapers = len(papers)
	env.Metrics.AddPapers("fetched", len(papers))
	log.Info().Int("total_papers", len(papers)).Msg("fetch_papers.complete")
	if len(papers) == 0 {
		log.Info().Msg("pipeline.no_papers")
		return result, nil
	}

	f := &filter.Filter{Provider: env.Provider, Limit: env.Concurrency, Logger: log}
	filtered, err := f.Filter(ctx, q.Query, papers)
	env.Metrics.AddJudgments(filter.Stage, len(filtered.Results), filtered.Failed)
	if err != nil {
		return result, fmt.Errorf("filtering papers: %w", err)
	}
	result.FilteredPapers = len(filtered.Accepted)
	env.Metrics.AddPapers("filtered", len(filtered.Accepted))
	if len(filtered.Accepted) == 0 {
		log.Info().Msg("pipeline.nothing_accepted")
		return result, nil
	}

	candidates := filtered.Accepted
	if env.Fetcher != nil {
		candidates = acquire.Enrich(ctx, env.Fetcher, candidates, fanout.Config{
			Stage: "download_papers", Limit: env.Concurrency, Logger: log,
		})
	}

	sc := &scoring.Scorer{Provider: env.Provider, Tools: env.Tools, Limit: env.Concurrency, Logger: log}
	scored, err := sc.Score(ctx, q.Query, candidates)
	env.Metrics.AddJudgments(scoring.Stage+".round1", len(candidates)-scored.Failed[0], scored.Failed[0])
	env.Metrics.AddJudgments(scoring.Stage+".round2", len(candidates)-scored.Failed[1], scored.Failed[1])
	if err != nil {
		return result, fmt.Errorf("scoring papers: %w", err)
	}
	result.ScoredPapers = len(scored.Results)
	for _, r := range scored.Results {
		if r.Accepted() {
			result.AcceptedPapers++
		}
	}
	env.Metrics.AddPapers("scored", result.ScoredPapers)
	env.Metrics.AddPapers("accepted", result.AcceptedPapers)

	top := SelectTopK(scored.Results, q.TopK)
	log.Info().Int("accepted", result.AcceptedPapers).Int("top_k", len(top)).Msg("select_top_k.complete")
	if len(top) == 0 {
		return result, nil
	}

	sum := &summarize.Summarizer{Provider: env.Provider, Tools: env.Tools, Limit: env.Concurrency, Logger: log}
	result.Summaries = sum.Summarize(ctx, top)
	env.Metrics.AddJudgments(summarize.Stage, len(result.Summaries), len(top)-len(result.Summaries))
	env.Metrics.AddPapers("summarized", len(result.Summaries))

	if env.Reformat && len(result.Summaries) > 0 {
		rf := &summarize.Reformatter{Provider: env.Provider, Limit: env.Concurrency, Logger: log}
		result.Summaries = rf.Reformat(ctx, result.Summaries)
	}

	log.Info().Int("total_papers", result.TotalPapers).Int("filtered_papers", result.FilteredPapers).
		Int("scored_papers", result.ScoredPapers).Int("accepted_papers", result.AcceptedPapers).
		Int("summaries", len(result.Summaries)).Msg("pipeline.complete")
	return result, nil
}

// SelectTopK returns up to k accepted results by descending average score.
// The sort is stable, so ties keep their incoming order.
func SelectTopK(results []types.AggregatedScoreResult, k int) []types.AggregatedScoreResult {
	var accepted []types.AggregatedScoreResult
	for _, r := range results {
		if r.Accepted() {
			accepted = append(accepted, r)
		}
	}
	slices.SortStableFunc(accepted, func(a, b types.AggregatedScoreResult) int {
		return cmp.Compare(b.AvgScore, a.AvgScore)
	})
	if k >= 0 && len(accepted) > k {
		accepted = accepted[:k]
	}
	return accepted
}
