// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/history"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/report"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the digest pipeline for every configured query",
	Long: `Run selects categories, fetches recent papers, filters them, scores them
in two independent review rounds, summarizes the top-K accepted papers, and
exports one combined report per configured exporter.

A query that fails is reported and skipped; the other queries still run.
Pass --query to run a single ad hoc query instead of the configured ones.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("query", "", "run only this query")
	runCmd.Flags().Int("top-k", 10, "papers to summarize for --query")
	runCmd.Flags().Int("limit", 200, "papers to fetch for --query")
	runCmd.Flags().Int("days", 7, "publication window in days for --query")
	runCmd.Flags().StringSlice("categories", nil, "arXiv categories for --query (default: selected by the model)")
	runCmd.Flags().Bool("no-fulltext", false, "skip PDF download and conversion")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		topK, _ := cmd.Flags().GetInt("top-k")
		limit, _ := cmd.Flags().GetInt("limit")
		days, _ := cmd.Flags().GetInt("days")
		cats, _ := cmd.Flags().GetStringSlice("categories")
		cfg.Queries = []types.QueryConfig{{Query: q, TopK: topK, SearchLimit: limit, TimeDurationDays: days, Categories: cats}}
	}
	if len(cfg.Queries) == 0 {
		return fmt.Errorf("no queries configured; add queries to the config file or pass --query")
	}
	if len(cfg.User.Exporters) == 0 {
		cfg.User.Exporters = []types.ExporterConfig{{Destination: types.DestinationLocal, Format: types.FormatMarkdown, SummaryType: types.SummaryBoth}}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := observability.NewLogger(cfg.Logging)
	provider, err := llm.New(ctx, cfg.LLM, loadedSecrets, log)
	if err != nil {
		return err
	}

	st, err := newStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	env := pipeline.NewEnv(log, provider, st.arxiv)
	env.Tools = st.tools.Tools()
	env.Metrics = observability.NewMetrics()
	env.Concurrency = cfg.Concurrency
	if noFull, _ := cmd.Flags().GetBool("no-fulltext"); !noFull {
		env.Fetcher = st.fetcher
	}

	exp := &report.Exporter{ReportsDir: cfg.Output.ReportsDir, Logger: log}
	for _, e := range cfg.User.Exporters {
		if e.Destination != types.DestinationEmail {
			continue
		}
		sender, err := report.NewGmailSender(ctx, cfg.Gmail)
		if err != nil {
			log.Warn().Err(err).Msg("export.gmail_unavailable")
		} else {
			exp.Mail = sender
		}
		break
	}
	env.Exporter = exp

	rep := pipeline.Run(ctx, env, cfg)
	recordHistory(ctx, cfg.Output.HistoryFile, rep, log)

	for _, o := range rep.Outcomes {
		if o.Status == types.StatusError {
			fmt.Fprintf(os.Stderr, "query %q failed: %s\n", o.Query, o.Message)
			continue
		}
		r := o.Result
		fmt.Fprintf(os.Stderr, "query %q: %d fetched, %d filtered, %d accepted, %d summarized\n",
			o.Query, r.TotalPapers, r.FilteredPapers, r.AcceptedPapers, len(r.Summaries))
	}
	for _, e := range rep.Exports {
		fmt.Fprintf(os.Stderr, "export [%s]: %s\n", e.Exporter, e.Message)
	}
	if n := rep.Failed(); n == len(rep.Outcomes) {
		return fmt.Errorf("all %d queries failed", n)
	}
	return nil
}

// recordHistory appends the delivered papers to the history database. A
// failure here never fails the run.
func recordHistory(ctx context.Context, path string, rep types.RunReport, log zerolog.Logger) {
	if path == "" {
		return
	}
	h, err := history.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("history.open_error")
		return
	}
	defer h.Close()
	n, err := h.Record(ctx, rep)
	if err != nil {
		log.Warn().Err(err).Msg("history.record_error")
		return
	}
	log.Info().Int("papers", n).Str("path", path).Msg("history.recorded")
}
