// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
)

// FilterResult is one filter agent's verdict on one paper.
type FilterResult struct {
	PaperID        string  `json:"paper_id" yaml:"paper_id"`
	Accept         bool    `json:"accept" yaml:"accept"`
	Reasoning      string  `json:"reasoning" yaml:"reasoning" validate:"required"`
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score" validate:"gte=0,lte=10"`
}

// DimensionScores holds the five per-dimension review scores, each in [0,10].
type DimensionScores struct {
	Relevance    float64 `json:"relevance" yaml:"relevance" validate:"gte=0,lte=10"`
	Novelty      float64 `json:"novelty" yaml:"novelty" validate:"gte=0,lte=10"`
	Soundness    float64 `json:"soundness" yaml:"soundness" validate:"gte=0,lte=10"`
	Clarity      float64 `json:"clarity" yaml:"clarity" validate:"gte=0,lte=10"`
	Significance float64 `json:"significance" yaml:"significance" validate:"gte=0,lte=10"`
}

// Mean returns the unweighted per-dimension mean of a and b.
func (a DimensionScores) Mean(b DimensionScores) DimensionScores {
	return DimensionScores{
		Relevance:    (a.Relevance + b.Relevance) / 2,
		Novelty:      (a.Novelty + b.Novelty) / 2,
		Soundness:    (a.Soundness + b.Soundness) / 2,
		Clarity:      (a.Clarity + b.Clarity) / 2,
		Significance: (a.Significance + b.Significance) / 2,
	}
}

// Decision is the optional explicit verdict a reviewer may return next to
// its free-text recommendation.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ScoreResult is one reviewer's judgment of one paper in one round.
type ScoreResult struct {
	PaperID         string `json:"paper_id" yaml:"paper_id"`
	DimensionScores `yaml:",inline"`

	OverallScore float64 `json:"overall_score" yaml:"overall_score" validate:"gte=0,lte=10"`

	Summary    string `json:"summary" yaml:"summary" validate:"required"`
	Strengths  string `json:"strengths" yaml:"strengths" validate:"required"`
	Weaknesses string `json:"weaknesses" yaml:"weaknesses" validate:"required"`

	// Recommendation is free text that by convention begins with
	// "Accept" or "Reject".
	Recommendation string `json:"recommendation" yaml:"recommendation" validate:"required"`

	// Decision, when present, overrides the prefix of Recommendation.
	Decision Decision `json:"decision,omitempty" yaml:"decision,omitempty" validate:"omitempty,oneof=accept reject"`
}

// Accepts reports whether the reviewer recommends acceptance. An explicit
// Decision wins; otherwise the trimmed recommendation must begin with
// "accept" in any case.
func (s ScoreResult) Accepts() bool {
	switch s.Decision {
	case DecisionAccept:
		return true
	case DecisionReject:
		return false
	}
	return s.RecommendationAccepts()
}

// RecommendationAccepts reports whether the trimmed recommendation text
// begins with "accept" in any case, ignoring Decision.
func (s ScoreResult) RecommendationAccepts() bool {
	rec := strings.ToLower(strings.TrimSpace(s.Recommendation))
	return strings.HasPrefix(rec, "accept")
}

// DecisionConflicts reports whether an explicit Decision disagrees with the
// recommendation text.
func (s ScoreResult) DecisionConflicts() bool {
	return s.Decision != "" && s.Accepts() != s.RecommendationAccepts()
}

// Recommendation is the final aggregated verdict.
type Recommendation string

const (
	RecommendAccept Recommendation = "Accept"
	RecommendReject Recommendation = "Reject"
)

// AggregatedScoreResult merges the two independent review rounds of one paper.
type AggregatedScoreResult struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`
	Paper   Paper  `json:"paper" yaml:"paper"`

	Round1 ScoreResult `json:"round1" yaml:"round1"`
	Round2 ScoreResult `json:"round2" yaml:"round2"`

	AvgDimensions DimensionScores `json:"avg_dimensions" yaml:"avg_dimensions"`
	AvgScore      float64         `json:"avg_score" yaml:"avg_score"`

	AcceptRate     float64        `json:"accept_rate" yaml:"accept_rate"`
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
}

// Accepted reports whether the aggregated verdict is Accept.
func (a AggregatedScoreResult) Accepted() bool {
	return a.Recommendation == RecommendAccept
}

// Section names one of the six narrative parts of a paper summary.
type Section string

const (
	SectionResearchGap     Section = "research_gap"
	SectionRelatedStudies  Section = "related_studies"
	SectionMethodology     Section = "methodology"
	SectionExperiments     Section = "experiments"
	SectionFurtherResearch Section = "further_research"
	SectionOverallSummary  Section = "overall_summary"
)

// SectionOrder is the fixed order sections are generated and rendered in.
var SectionOrder = []Section{
	SectionResearchGap,
	SectionRelatedStudies,
	SectionMethodology,
	SectionExperiments,
	SectionFurtherResearch,
	SectionOverallSummary,
}

// Title returns the human-readable heading for s.
func (s Section) Title() string {
	switch s {
	case SectionResearchGap:
		return "Research Gap"
	case SectionRelatedStudies:
		return "Related Studies"
	case SectionMethodology:
		return "Methodology"
	case SectionExperiments:
		return "Experiments"
	case SectionFurtherResearch:
		return "Further Research"
	case SectionOverallSummary:
		return "Overall Summary"
	}
	return string(s)
}

// Sections holds the six narrative texts keyed by Section.
type Sections map[Section]string

// Complete reports whether every section in SectionOrder is non-empty.
func (s Sections) Complete() bool {
	for _, sec := range SectionOrder {
		if strings.TrimSpace(s[sec]) == "" {
			return false
		}
	}
	return true
}

// PaperSummary is the detailed write-up of one top-K paper.
type PaperSummary struct {
	Score    AggregatedScoreResult `json:"score" yaml:"score"`
	Sections Sections              `json:"sections" yaml:"sections"`

	// HTMLSections holds reformatted HTML per section. Missing entries fall
	// back to rendering the markdown in Sections.
	HTMLSections Sections `json:"html_sections,omitempty" yaml:"html_sections,omitempty"`
}

// WorkflowResult is the rollup of one query's pipeline run.
type WorkflowResult struct {
	Query      string   `json:"query" yaml:"query"`
	Categories []string `json:"categories" yaml:"categories"`

	TotalPapers    int `json:"total_papers" yaml:"total_papers"`
	FilteredPapers int `json:"filtered_papers" yaml:"filtered_papers"`
	ScoredPapers   int `json:"scored_papers" yaml:"scored_papers"`
	AcceptedPapers int `json:"accepted_papers" yaml:"accepted_papers"`

	Summaries []PaperSummary `json:"summaries" yaml:"summaries"`
}
