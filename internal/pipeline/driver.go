// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Run executes every configured query in order and then exports the
// successful results once per exporter. A failed query becomes an error
// outcome; it never stops the batch.
func Run(ctx context.Context, env *Env, cfg types.Config) types.RunReport {
	qenv := *env
	qenv.Reformat = env.Reformat || cfg.NeedsHTMLReformat()

	rep := types.RunReport{RunID: env.RunID, Started: env.now()}
	for _, q := range cfg.Queries {
		start := env.now()
		res, err := RunQuery(ctx, &qenv, q)
		out := types.QueryOutcome{Query: q.Query, Duration: env.now().Sub(start)}
		if err != nil {
			out.Status = types.StatusError
			out.Message = err.Error()
			env.Logger.Error().Str("run_id", env.RunID).Str("query", q.Query).Err(err).Msg("pipeline.query_error")
		} else {
			out.Status = types.StatusSuccess
			out.Result = &res
		}
		env.Metrics.ObserveQuery(string(out.Status), out.Duration)
		rep.Outcomes = append(rep.Outcomes, out)
	}

	results := rep.Results()
	if env.Exporter != nil {
		for _, ec := range cfg.User.Exporters {
			st := env.Exporter.Export(ctx, ec, cfg.User, results)
			env.Metrics.ObserveExport(st.Exporter, string(st.Status))
			rep.Exports = append(rep.Exports, st)
		}
	}

	env.Logger.Info().Str("run_id", env.RunID).Int("queries", len(cfg.Queries)).
		Int("failed", rep.Failed()).Int("exports", len(rep.Exports)).Msg("pipeline.run_complete")

	if path := cfg.Output.MetricsFile; path != "" && env.Metrics != nil {
		if err := env.Metrics.WriteTextfile(path); err != nil {
			env.Logger.Warn().Err(err).Msg("pipeline.metrics_write_error")
		}
	}
	if path := cfg.Output.ResultsFile; path != "" {
		if err := WriteReport(path, rep); err != nil {
			env.Logger.Warn().Err(err).Msg("pipeline.results_write_error")
		}
	}
	return rep
}

// WriteReport dumps rep as YAML to path.
func WriteReport(path string, rep types.RunReport) error {
	b, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}
