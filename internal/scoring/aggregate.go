// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// AcceptThreshold is the minimum accept rate for a final Accept. With two
// rounds a 1-of-2 split (0.5) is Accept.
const AcceptThreshold = 0.5

// State is where one paper stands in the scoring stage.
type State int

const (
	Pending State = iota
	RoundOneScored
	RoundTwoScored
	Aggregated
	Dropped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case RoundOneScored:
		return "round_one_scored"
	case RoundTwoScored:
		return "round_two_scored"
	case Aggregated:
		return "aggregated"
	case Dropped:
		return "dropped"
	}
	return "unknown"
}

// Scored pairs a paper with one round's judgment of it.
type Scored struct {
	Paper types.Paper
	Score types.ScoreResult
}

// Aggregate merges two rounds. Only papers scored in both rounds survive,
// in round-one order; the rest are returned as dropped ids.
func Aggregate(round1, round2 []Scored, log zerolog.Logger) ([]types.AggregatedScoreResult, []string) {
	second := make(map[string]types.ScoreResult, len(round2))
	for _, s := range round2 {
		second[s.Score.PaperID] = s.Score
	}

	var (
		out     []types.AggregatedScoreResult
		dropped []string
		seen    = make(map[string]bool, len(round1))
	)
	for _, s := range round1 {
		id := s.Score.PaperID
		if seen[id] {
			continue
		}
		seen[id] = true

		s2, ok := second[id]
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		for round, sc := range [2]types.ScoreResult{s.Score, s2} {
			if sc.DecisionConflicts() {
				log.Warn().Str("paper_id", id).Int("round", round+1).
					Str("decision", string(sc.Decision)).Str("recommendation", sc.Recommendation).
					Msg("score_papers.decision_conflict")
			}
		}
		out = append(out, merge(s.Paper, s.Score, s2))
	}
	for _, s := range round2 {
		if !seen[s.Score.PaperID] {
			seen[s.Score.PaperID] = true
			dropped = append(dropped, s.Score.PaperID)
		}
	}

	if len(dropped) > 0 {
		log.Debug().Int("round1", len(round1)).Int("round2", len(round2)).
			Int("aggregated", len(out)).Strs("dropped", dropped).Msg("score_papers.partial_rounds")
	}
	return out, dropped
}

func merge(p types.Paper, s1, s2 types.ScoreResult) types.AggregatedScoreResult {
	rate := (vote(s1) + vote(s2)) / 2
	rec := types.RecommendReject
	if rate >= AcceptThreshold {
		rec = types.RecommendAccept
	}
	return types.AggregatedScoreResult{
		PaperID:        s1.PaperID,
		Paper:          p,
		Round1:         s1,
		Round2:         s2,
		AvgDimensions:  s1.DimensionScores.Mean(s2.DimensionScores),
		AvgScore:       (s1.OverallScore + s2.OverallScore) / 2,
		AcceptRate:     rate,
		Recommendation: rec,
	}
}

func vote(s types.ScoreResult) float64 {
	if s.Accepts() {
		return 1
	}
	return 0
}
