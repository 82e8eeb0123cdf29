// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters a pipeline run updates. Each Metrics owns its
// registry so concurrent runs and tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// QueriesTotal counts finished queries, labeled by status.
	QueriesTotal *prometheus.CounterVec

	// QueryDuration observes per-query wall time in seconds.
	QueryDuration prometheus.Histogram

	// PapersTotal counts papers leaving each stage, labeled by stage.
	PapersTotal *prometheus.CounterVec

	// JudgmentsTotal counts LLM judgments, labeled by stage and outcome.
	JudgmentsTotal *prometheus.CounterVec

	// ExportsTotal counts export attempts, labeled by exporter and status.
	ExportsTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_digest",
			Name:      "queries_total",
			Help:      "Queries processed, by final status.",
		}, []string{"status"}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paper_digest",
			Name:      "query_duration_seconds",
			Help:      "Wall time of one query's pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
		PapersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_digest",
			Name:      "papers_total",
			Help:      "Papers produced by each pipeline stage.",
		}, []string{"stage"}),
		JudgmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_digest",
			Name:      "judgments_total",
			Help:      "LLM judgments by stage and outcome.",
		}, []string{"stage", "outcome"}),
		ExportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paper_digest",
			Name:      "exports_total",
			Help:      "Report export attempts by exporter and status.",
		}, []string{"exporter", "status"}),
	}
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(status).Inc()
	m.QueryDuration.Observe(d.Seconds())
}

// AddPapers adds n to the stage's paper counter.
func (m *Metrics) AddPapers(stage string, n int) {
	if m == nil {
		return
	}
	m.PapersTotal.WithLabelValues(stage).Add(float64(n))
}

// AddJudgments records ok successes and failed failures for a stage.
func (m *Metrics) AddJudgments(stage string, ok, failed int) {
	if m == nil {
		return
	}
	m.JudgmentsTotal.WithLabelValues(stage, "ok").Add(float64(ok))
	m.JudgmentsTotal.WithLabelValues(stage, "failed").Add(float64(failed))
}

// ObserveExport records one export attempt.
func (m *Metrics) ObserveExport(exporter, status string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(exporter, status).Inc()
}

// Gatherer exposes the registry for custom exposition.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every metric in the Prometheus text format to path,
// for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
