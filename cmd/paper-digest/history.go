// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [text]",
	Short: "Search papers delivered by earlier runs",
	Long: `History lists papers recorded in output.history_file by earlier "run"
invocations, newest first. The optional argument matches titles and short
summaries.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("query", "", "only papers delivered for this research query")
	historyCmd.Flags().String("paper", "", "only this arXiv id")
	historyCmd.Flags().Int("days", 0, "only papers recorded in the last N days")
	historyCmd.Flags().Float64("min-score", 0, "minimum average review score")
	historyCmd.Flags().Int("limit", 50, "maximum number of results (-1 for all)")
	historyCmd.Flags().String("format", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.HistoryFile == "" {
		return fmt.Errorf("output.history_file is not set")
	}
	h, err := history.Open(cfg.Output.HistoryFile)
	if err != nil {
		return err
	}
	defer h.Close()

	var opts history.Options
	if len(args) == 1 {
		opts.Text = args[0]
	}
	opts.Query, _ = cmd.Flags().GetString("query")
	opts.PaperID, _ = cmd.Flags().GetString("paper")
	opts.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if days, _ := cmd.Flags().GetInt("days"); days > 0 {
		opts.Since = time.Now().AddDate(0, 0, -days)
	}

	entries, err := h.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return history.WriteJSON(os.Stdout, entries)
	case "yaml":
		return history.WriteYAML(os.Stdout, entries)
	case "table":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tSCORE\tID\tQUERY\tTITLE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\n", e.RecordedAt.Format("2006-01-02"), e.AvgScore, e.PaperID, e.Query, e.Title)
	}
	return tw.Flush()
}
