// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperWithFullTextCopies(t *testing.T) {
	orig := Paper{ID: "2401.00001v1", Authors: []string{"A", "B"}, Categories: []string{"cs.SE"}}
	enriched := orig.WithFullText("/cache/2401.00001v1.md")

	assert.False(t, orig.HasFullText())
	assert.True(t, enriched.HasFullText())

	enriched.Authors[0] = "changed"
	assert.Equal(t, "A", orig.Authors[0], "enrichment must not share backing arrays")
}

func TestPaperShortAuthors(t *testing.T) {
	p := Paper{Authors: []string{"A", "B", "C"}}
	assert.Equal(t, "A, B, C", p.ShortAuthors(5))
	assert.Equal(t, "A, B...", p.ShortAuthors(2))
}

func TestScoreResultAccepts(t *testing.T) {
	tests := []struct {
		name string
		s    ScoreResult
		want bool
	}{
		{"accept prefix", ScoreResult{Recommendation: "Accept, strong"}, true},
		{"lowercase with spaces", ScoreResult{Recommendation: "   accept"}, true},
		{"reject prefix", ScoreResult{Recommendation: "Reject, weak methodology"}, false},
		{"accept not at start", ScoreResult{Recommendation: "Weak accept"}, false},
		{"empty", ScoreResult{}, false},
		{"decision overrides text", ScoreResult{Recommendation: "Accept", Decision: DecisionReject}, false},
		{"decision accept", ScoreResult{Recommendation: "Borderline", Decision: DecisionAccept}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Accepts())
		})
	}
}

func TestScoreResultDecisionConflicts(t *testing.T) {
	assert.False(t, ScoreResult{Recommendation: "Accept"}.DecisionConflicts())
	assert.False(t, ScoreResult{Recommendation: "Accept, solid", Decision: DecisionAccept}.DecisionConflicts())
	assert.False(t, ScoreResult{Recommendation: "Reject", Decision: DecisionReject}.DecisionConflicts())
	assert.True(t, ScoreResult{Recommendation: "Accept", Decision: DecisionReject}.DecisionConflicts())
	assert.True(t, ScoreResult{Recommendation: "Borderline", Decision: DecisionAccept}.DecisionConflicts())
}

func TestDimensionScoresMean(t *testing.T) {
	a := DimensionScores{Relevance: 8, Novelty: 6, Soundness: 7, Clarity: 9, Significance: 5}
	b := DimensionScores{Relevance: 6, Novelty: 6, Soundness: 8, Clarity: 7, Significance: 4}
	got := a.Mean(b)
	assert.Equal(t, DimensionScores{Relevance: 7, Novelty: 6, Soundness: 7.5, Clarity: 8, Significance: 4.5}, got)
}

func TestSectionsComplete(t *testing.T) {
	s := Sections{}
	for _, sec := range SectionOrder {
		s[sec] = "text"
	}
	assert.True(t, s.Complete())

	s[SectionExperiments] = "  "
	assert.False(t, s.Complete())
}

func TestQueryWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	from, to := QueryConfig{}.Window(now)
	assert.Equal(t, now, to)
	assert.Equal(t, now.AddDate(0, 0, -7), from)

	from, _ = QueryConfig{TimeDurationDays: 3}.Window(now)
	assert.Equal(t, now.AddDate(0, 0, -3), from)

	explicit := QueryConfig{From: now.AddDate(0, -1, 0), To: now.AddDate(0, 0, -1)}
	from, to = explicit.Window(now)
	assert.Equal(t, explicit.From, from)
	assert.Equal(t, explicit.To, to)
}

func validConfig() Config {
	return Config{
		User: UserConfig{
			Name:  "Ada",
			Email: "ada@example.com",
			Exporters: []ExporterConfig{
				{Destination: DestinationLocal, Format: FormatMarkdown, SummaryType: SummaryBoth},
			},
		},
		Queries: []QueryConfig{{Query: "program repair", TopK: 5, SearchLimit: 100}},
		LLM:     LLMConfig{Provider: ProviderAnthropic, Model: "claude-sonnet-4-5"},
		Arxiv: ArxivConfig{
			APIBase:               "http://export.arxiv.org/api/query",
			RequestsPerSecond:     0.33,
			MaxResultsPerCategory: 100,
		},
		Cache:  CacheConfig{Dir: "outputs/papers"},
		Output: OutputConfig{ReportsDir: "outputs/reports"},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	bad := validConfig()
	bad.Queries[0].TopK = 0
	bad.LLM.Provider = "llama"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TopK")
	assert.Contains(t, err.Error(), "Provider")
}

func TestConfigNeedsHTMLReformat(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.NeedsHTMLReformat())

	cfg.User.Exporters = append(cfg.User.Exporters, ExporterConfig{Destination: DestinationEmail, Format: FormatHTML, SummaryType: SummaryShort})
	assert.False(t, cfg.NeedsHTMLReformat())

	cfg.User.Exporters[1].SummaryType = SummaryDetailed
	assert.True(t, cfg.NeedsHTMLReformat())
}

func TestRunReportResults(t *testing.T) {
	r := RunReport{Outcomes: []QueryOutcome{
		{Query: "a", Status: StatusSuccess, Result: &WorkflowResult{Query: "a"}},
		{Query: "b", Status: StatusError, Message: "boom"},
		{Query: "c", Status: StatusSuccess, Result: &WorkflowResult{Query: "c"}},
	}}
	results := r.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Query)
	assert.Equal(t, "c", results[1].Query)
	assert.Equal(t, 1, r.Failed())
}
