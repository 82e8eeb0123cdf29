// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(types.LoggingConfig{Level: "info", Format: "json"}, &buf)
	logger = WithPaper(WithQuery(logger, "run-1", "program repair"), "2401.00001v1")

	logger.Debug().Msg("hidden")
	logger.Info().Int("round", 2).Msg("score_papers.round_complete")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "score_papers.round_complete", entry["message"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "program repair", entry["query"])
	assert.Equal(t, "2401.00001v1", entry["paper_id"])
	assert.EqualValues(t, 2, entry["round"])
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveQuery("success", 3*time.Second)
	m.ObserveQuery("error", time.Second)
	m.ObserveQuery("success", time.Second)
	m.AddPapers("fetched", 40)
	m.AddJudgments("filter", 38, 2)
	m.ObserveExport("local:markdown", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("error")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.PapersTotal.WithLabelValues("fetched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.JudgmentsTotal.WithLabelValues("filter", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("local:markdown", "success")))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery("success", time.Second)
		m.AddPapers("fetched", 1)
		m.AddJudgments("filter", 1, 0)
		m.ObserveExport("local:html", "error")
	})
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.AddPapers("scored", 7)

	path := filepath.Join(t.TempDir(), "paper_digest.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `paper_digest_papers_total{stage="scored"} 7`)
}
