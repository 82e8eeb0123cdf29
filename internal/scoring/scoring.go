// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring runs the double-blind review: every paper is judged in two
// independent rounds by fresh reviewer agents, and the rounds are merged by
// Aggregate.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Stage is the stage name used in logs and metrics.
const Stage = "score_papers"

// ErrRoundFailed is returned when every paper failed in one round.
var ErrRoundFailed = errors.New("scoring: every paper failed in a round")

// Scorer reviews papers. Tools are offered during the free-text step of each
// judgment.
type Scorer struct {
	Provider llm.Provider
	Tools    []llm.Tool
	Limit    int
	Logger   zerolog.Logger
}

// Outcome is the scoring stage's output.
type Outcome struct {
	Results []types.AggregatedScoreResult
	Dropped []string
	States  map[string]State

	// Failed counts failed judgments per round, index 0 for round one.
	Failed [2]int
}

// Score runs round one and then round two over papers and aggregates.
func (s *Scorer) Score(ctx context.Context, query string, papers []types.Paper) (Outcome, error) {
	log := s.Logger.With().Str("stage", Stage).Logger()
	log.Info().Int("total_papers", len(papers)).Str("query", query).Msg("score_papers.start")

	out := Outcome{States: make(map[string]State, len(papers))}
	for _, p := range papers {
		out.States[p.ID] = Pending
	}
	if len(papers) == 0 {
		return out, nil
	}

	var rounds [2][]Scored
	for i := range rounds {
		round := i + 1
		scored, failed := s.round(ctx, log, round, query, papers)
		rounds[i] = scored
		out.Failed[i] = failed
		for _, sc := range scored {
			if round == 1 {
				out.States[sc.Score.PaperID] = RoundOneScored
			} else if out.States[sc.Score.PaperID] == RoundOneScored {
				out.States[sc.Score.PaperID] = RoundTwoScored
			}
		}
		log.Info().Int("round", round).Int("scored", len(scored)).Int("errors", failed).
			Msgf("score_papers.round%d_complete", round)
		if len(scored) == 0 {
			return out, fmt.Errorf("%w: round %d (%d papers)", ErrRoundFailed, round, len(papers))
		}
	}

	out.Results, out.Dropped = Aggregate(rounds[0], rounds[1], log)
	for id := range out.States {
		out.States[id] = Dropped
	}
	for _, r := range out.Results {
		out.States[r.PaperID] = Aggregated
	}

	var sum float64
	for _, r := range out.Results {
		sum += r.AvgScore
	}
	ev := log.Info().Int("total_papers", len(papers)).Int("scored_papers", len(out.Results)).
		Int("dropped_papers", len(papers)-len(out.Results))
	if len(out.Results) > 0 {
		ev = ev.Float64("avg_score_mean", sum/float64(len(out.Results)))
	}
	ev.Msg("score_papers.complete")
	return out, nil
}

// round judges every paper once. Each paper gets its own agent, so no
// conversation state crosses papers or rounds.
func (s *Scorer) round(ctx context.Context, log zerolog.Logger, round int, query string, papers []types.Paper) ([]Scored, int) {
	log = log.With().Int("round", round).Logger()
	log.Info().Int("count", len(papers)).Msgf("score_papers.round%d_start", round)

	instructions, err := render(instructionsTmpl, round)
	if err != nil {
		log.Error().Err(err).Msg("score_papers.prompt_error")
		return nil, len(papers)
	}

	results := fanout.Run(ctx, fanout.Config{Stage: fmt.Sprintf("%s.round%d", Stage, round), Limit: s.Limit, Logger: log},
		papers,
		func(p types.Paper) string { return p.ID },
		func(ctx context.Context, p types.Paper) (Scored, error) {
			agent := llm.NewAgent(s.Provider, llm.AgentConfig{
				Name:         fmt.Sprintf("paper_scorer_round%d", round),
				Instructions: instructions,
				Tools:        s.Tools,
				Temperature:  0.4,
				Logger:       log,
			})
			score, err := Judge(ctx, agent, query, p)
			if err != nil {
				log.Error().Str("paper_id", p.ID).Err(err).Msgf("score_papers.round%d_error", round)
				return Scored{}, err
			}
			log.Debug().Str("paper_id", p.ID).Float64("overall_score", score.OverallScore).
				Msgf("score_papers.round%d_scored", round)
			return Scored{Paper: p, Score: score}, nil
		})
	return fanout.Successes(results), fanout.Failed(results)
}

// Judge runs the two-step judgment on agent. Step one is a free-text review
// with tools; step two reformats it into a ScoreResult without tools or
// history. A failure in either step fails the judgment.
func Judge(ctx context.Context, agent *llm.Agent, query string, p types.Paper) (types.ScoreResult, error) {
	var fullText string
	if p.HasFullText() {
		b, err := os.ReadFile(p.FullTextPath)
		if err != nil {
			return types.ScoreResult{}, fmt.Errorf("reading full text of %s: %w", p.ID, err)
		}
		fullText = string(b)
	}

	msg, err := reviewMessage(query, p, fullText)
	if err != nil {
		return types.ScoreResult{}, err
	}
	review, err := agent.GenerateText(ctx, msg)
	if err != nil {
		return types.ScoreResult{}, fmt.Errorf("review of %s: %w", p.ID, err)
	}

	format, err := render(formatTmpl, llm.StripThinking(review))
	if err != nil {
		return types.ScoreResult{}, err
	}
	var score types.ScoreResult
	err = agent.GenerateStructured(ctx, format, scoreSchema, &score,
		llm.WithoutTools(), llm.WithoutHistory(), llm.WithTemperature(0.1), llm.WithMaxTokens(16384))
	if err != nil {
		return types.ScoreResult{}, fmt.Errorf("formatting score of %s: %w", p.ID, err)
	}
	score.PaperID = p.ID
	return score, nil
}
