// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

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

func aggregated(ids ...string) []types.AggregatedScoreResult {
	out := make([]types.AggregatedScoreResult, len(ids))
	for i, id := range ids {
		out[i] = types.AggregatedScoreResult{
			PaperID:        id,
			Paper:          types.Paper{ID: id, Title: "Title " + id, Authors: []string{"A", "B"}},
			AvgScore:       7,
			Recommendation: types.RecommendAccept,
		}
	}
	return out
}

// sectionOf maps a prompt back to the section it asks for.
func sectionOf(msg string) types.Section {
	for _, sec := range types.SectionOrder {
		if strings.HasSuffix(msg, Prompts[sec]) {
			return sec
		}
	}
	return ""
}

var paperIDLine = regexp.MustCompile(`Paper ID: (\S+)`)

// recorder answers each section prompt with "<section> text" and logs the
// call order per paper.
type recorder struct {
	fail func(id string, sec types.Section) bool

	mu    sync.Mutex
	order map[string][]types.Section
}

func (r *recorder) respond(req llm.Request) (llm.Response, error) {
	m := paperIDLine.FindStringSubmatch(req.Messages[0].Content)
	id := m[1]
	sec := sectionOf(llmtest.LastUser(req))

	r.mu.Lock()
	if r.order == nil {
		r.order = map[string][]types.Section{}
	}
	r.order[id] = append(r.order[id], sec)
	r.mu.Unlock()

	if r.fail != nil && r.fail(id, sec) {
		return llm.Response{}, errors.New("model error")
	}
	return llm.Response{Text: "  " + string(sec) + " text  "}, nil
}

func TestSummarizeSectionOrder(t *testing.T) {
	rec := &recorder{}
	fake := &llmtest.Provider{Respond: rec.respond}
	s := &Summarizer{Provider: fake, Logger: zerolog.Nop()}

	out := s.Summarize(context.Background(), aggregated("P1", "P2"))
	require.Len(t, out, 2)

	for _, id := range []string{"P1", "P2"} {
		assert.Equal(t, types.SectionOrder, rec.order[id])
	}
	assert.Equal(t, "P1", out[0].Score.PaperID)
	assert.Equal(t, "methodology text", out[0].Sections[types.SectionMethodology])
	assert.True(t, out[0].Sections.Complete())
	assert.Len(t, fake.Calls(), 12)
}

func TestSummarizeSharesConversationWithinPaper(t *testing.T) {
	rec := &recorder{}
	fake := &llmtest.Provider{Respond: rec.respond}
	s := &Summarizer{Provider: fake, Logger: zerolog.Nop()}

	s.Summarize(context.Background(), aggregated("P1"))

	calls := fake.Calls()
	require.Len(t, calls, 6)
	for i, c := range calls {
		assert.Len(t, c.Messages, 2*i+1, "call %d sees the earlier sections", i)
	}
	assert.Contains(t, calls[0].Messages[0].Content, "Title: Title P1")
	assert.Contains(t, calls[0].Messages[0].Content, Prompts[types.SectionResearchGap])
}

func TestSummarizeAbandonsPaperOnAnyFailure(t *testing.T) {
	rec := &recorder{fail: func(id string, sec types.Section) bool {
		return id == "P2" && sec == types.SectionExperiments
	}}
	fake := &llmtest.Provider{Respond: rec.respond}
	s := &Summarizer{Provider: fake, Logger: zerolog.Nop()}

	out := s.Summarize(context.Background(), aggregated("P1", "P2", "P3"))
	require.Len(t, out, 2)
	assert.Equal(t, "P1", out[0].Score.PaperID)
	assert.Equal(t, "P3", out[1].Score.PaperID)
	assert.Len(t, rec.order["P2"], 4, "no sections are asked after the failure")
}

func TestSummarizeInlinesMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "P1.md")
	require.NoError(t, os.WriteFile(path, []byte("# Intro\nbody"), 0o644))

	rec := &recorder{}
	fake := &llmtest.Provider{Respond: rec.respond}
	s := &Summarizer{Provider: fake, Logger: zerolog.Nop()}

	papers := aggregated("P1", "P2")
	papers[0].Paper = papers[0].Paper.WithFullText(path)
	s.Summarize(context.Background(), papers)

	for _, c := range fake.Calls() {
		first := c.Messages[0].Content
		if strings.Contains(first, "Paper ID: P1") {
			assert.Contains(t, first, "# Intro\nbody")
		} else {
			assert.Contains(t, first, "use the tools to read it")
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := &Summarizer{Provider: &llmtest.Provider{}, Logger: zerolog.Nop()}
	assert.Empty(t, s.Summarize(context.Background(), nil))
}
