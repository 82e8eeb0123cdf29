// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/llm/llmtest"
	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestMain(m *testing.M) {
	// opencensus, imported by the genai auth stack, starts its view worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func papers(n int) []types.Paper {
	out := make([]types.Paper, n)
	for i := range out {
		out[i] = types.Paper{
			ID:        fmt.Sprintf("P%d", i+1),
			Title:     fmt.Sprintf("Paper %d", i+1),
			Authors:   []string{"A. Author"},
			Abstract:  "An abstract.",
			Published: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

// paperID pulls "- ID: X" out of the rendered prompt.
func paperID(req llm.Request) string {
	for _, line := range strings.Split(llmtest.LastUser(req), "\n") {
		if id, ok := strings.CutPrefix(line, "- ID: "); ok {
			return id
		}
	}
	return ""
}

func TestFilterOneCallThrows(t *testing.T) {
	fake := &llmtest.Provider{Respond: func(req llm.Request) (llm.Response, error) {
		if paperID(req) == "P3" {
			return llm.Response{}, errors.New("boom")
		}
		return llm.Response{Text: `{"paper_id": "wrong", "accept": true, "reasoning": "ok", "relevance_score": 7}`}, nil
	}}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	out, err := f.Filter(context.Background(), "program repair", papers(5))
	require.NoError(t, err)
	assert.Len(t, out.Results, 4)
	assert.Equal(t, 1, out.Failed)

	var ids []string
	for _, p := range out.Accepted {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"P1", "P2", "P4", "P5"}, ids)
	for _, r := range out.Results {
		assert.NotEqual(t, "wrong", r.PaperID, "paper id comes from the input paper")
		assert.NotEqual(t, "P3", r.PaperID)
	}
	assert.Len(t, fake.Calls(), 5)
}

func TestFilterRejects(t *testing.T) {
	fake := &llmtest.Provider{Respond: func(req llm.Request) (llm.Response, error) {
		accept := paperID(req) != "P2"
		return llm.Response{Text: fmt.Sprintf(`{"accept": %t, "reasoning": "r", "relevance_score": 5}`, accept)}, nil
	}}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	out, err := f.Filter(context.Background(), "q", papers(3))
	require.NoError(t, err)
	require.Len(t, out.Accepted, 2)
	assert.Equal(t, "P1", out.Accepted[0].ID)
	assert.Equal(t, "P3", out.Accepted[1].ID)
	assert.Len(t, out.Results, 3)
}

func TestFilterSchemaViolationIsPerItem(t *testing.T) {
	fake := &llmtest.Provider{Respond: func(req llm.Request) (llm.Response, error) {
		if paperID(req) == "P1" {
			return llm.Response{Text: `{"accept": true, "relevance_score": 42}`}, nil
		}
		return llm.Response{Text: `{"accept": true, "reasoning": "fine", "relevance_score": 8}`}, nil
	}}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	out, err := f.Filter(context.Background(), "q", papers(2))
	require.NoError(t, err)
	require.Len(t, out.Accepted, 1)
	assert.Equal(t, "P2", out.Accepted[0].ID)
}

func TestFilterMissingAcceptFailsItem(t *testing.T) {
	fake := &llmtest.Provider{Respond: func(req llm.Request) (llm.Response, error) {
		if paperID(req) == "P1" {
			return llm.Response{Text: `{"reasoning": "ok", "relevance_score": 9}`}, nil
		}
		return llm.Response{Text: `{"accept": false, "reasoning": "off-topic", "relevance_score": 2}`}, nil
	}}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	out, err := f.Filter(context.Background(), "q", papers(2))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "P2", out.Results[0].PaperID)
	assert.Empty(t, out.Accepted)
}

func TestFilterAllFail(t *testing.T) {
	fake := &llmtest.Provider{Respond: func(llm.Request) (llm.Response, error) {
		return llm.Response{}, errors.New("down")
	}}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	_, err := f.Filter(context.Background(), "q", papers(2))
	assert.ErrorIs(t, err, ErrAllFailed)
}

func TestFilterEmpty(t *testing.T) {
	f := &Filter{Provider: &llmtest.Provider{}, Logger: zerolog.Nop()}
	out, err := f.Filter(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, out.Accepted)
}

func TestFilterPrompt(t *testing.T) {
	fake := &llmtest.Provider{Respond: llmtest.Text(`{"accept": false, "reasoning": "r", "relevance_score": 1}`)}
	f := &Filter{Provider: fake, Logger: zerolog.Nop()}

	_, err := f.Filter(context.Background(), "program repair", papers(1))
	require.NoError(t, err)

	req := fake.Calls()[0]
	msg := llmtest.LastUser(req)
	assert.Contains(t, msg, "Query: program repair")
	assert.Contains(t, msg, "- Title: Paper 1")
	assert.Contains(t, msg, "- Published: 2026-03-01")
	assert.Contains(t, req.System, "paper quality filter")
	assert.Empty(t, req.Tools)
}
