// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func openTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	t.Cleanup(func() { s.Close() })
	return s
}

func summary(id, title, short string, score float64) types.PaperSummary {
	return types.PaperSummary{Score: types.AggregatedScoreResult{
		PaperID:        id,
		Paper:          types.Paper{ID: id, Title: title, Authors: []string{"Ada", "Grace"}, Published: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		Round1:         types.ScoreResult{Summary: short},
		AvgScore:       score,
		AcceptRate:     1,
		Recommendation: types.RecommendAccept,
	}}
}

func sampleReport(runID string) types.RunReport {
	return types.RunReport{
		RunID:   runID,
		Started: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		Outcomes: []types.QueryOutcome{
			{Query: "program repair", Status: types.StatusSuccess, Result: &types.WorkflowResult{
				Query: "program repair",
				Summaries: []types.PaperSummary{
					summary("2603.00001v1", "Repairing Bugs with Agents", "An agent fixes bugs.", 7.5),
					summary("2603.00002v1", "Patch Ranking", "Ranks candidate patches.", 6.0),
				},
			}},
			{Query: "broken", Status: types.StatusError, Message: "boom"},
			{Query: "fuzzing", Status: types.StatusSuccess, Result: &types.WorkflowResult{
				Query:     "fuzzing",
				Summaries: []types.PaperSummary{summary("2603.00003v1", "Grammar Fuzzing", "Fuzzes parsers with grammars.", 8.0)},
			}},
		},
	}
}

func TestRecordAndSearch(t *testing.T) {
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	s := openTestStore(t, now)
	ctx := context.Background()

	n, err := s.Record(ctx, sampleReport("run-1"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := s.Search(ctx, Options{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2603.00003v1", all[0].PaperID, "highest score first within a run")
	assert.Equal(t, []string{"Ada", "Grace"}, all[0].Authors)
	assert.Equal(t, now, all[0].RecordedAt)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), all[0].Published)

	byQuery, err := s.Search(ctx, Options{Query: "program repair"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 2)

	byText, err := s.Search(ctx, Options{Text: "PATCH"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "2603.00002v1", byText[0].PaperID)

	bySummary, err := s.Search(ctx, Options{Text: "parsers"})
	require.NoError(t, err)
	require.Len(t, bySummary, 1)

	highScore, err := s.Search(ctx, Options{MinScore: 7})
	require.NoError(t, err)
	assert.Len(t, highScore, 2)

	limited, err := s.Search(ctx, Options{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	future, err := s.Search(ctx, Options{Since: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestRecordSameRunReplaces(t *testing.T) {
	s := openTestStore(t, time.Now())
	ctx := context.Background()

	_, err := s.Record(ctx, sampleReport("run-1"))
	require.NoError(t, err)
	_, err = s.Record(ctx, sampleReport("run-1"))
	require.NoError(t, err)

	all, err := s.Search(ctx, Options{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.Record(ctx, sampleReport("run-2"))
	require.NoError(t, err)
	byPaper, err := s.Search(ctx, Options{PaperID: "2603.00001v1"})
	require.NoError(t, err)
	assert.Len(t, byPaper, 2)
}

func TestRecordEmptyRun(t *testing.T) {
	s := openTestStore(t, time.Now())
	n, err := s.Record(context.Background(), types.RunReport{RunID: "empty", Started: time.Now()})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriteExports(t *testing.T) {
	entries := []Entry{{RunID: "r", Query: "q", PaperID: "p1", Title: "T", AvgScore: 7}}

	var y bytes.Buffer
	require.NoError(t, WriteYAML(&y, entries))
	var fromYAML []Entry
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &fromYAML))
	assert.Equal(t, "p1", fromYAML[0].PaperID)

	var j bytes.Buffer
	require.NoError(t, WriteJSON(&j, nil))
	assert.JSONEq(t, `[]`, j.String())

	j.Reset()
	require.NoError(t, WriteJSON(&j, entries))
	var fromJSON []Entry
	require.NoError(t, json.Unmarshal(j.Bytes(), &fromJSON))
	assert.Equal(t, 7.0, fromJSON[0].AvgScore)
}
