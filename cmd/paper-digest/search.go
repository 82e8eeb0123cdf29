// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/categories"
	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List recent arXiv papers for a topic",
	Long: `Search fetches the newest submissions in the given arXiv categories and
keeps those published inside the time window. Without --categories the
language model picks categories for --query, as the pipeline does.

No filtering or scoring is applied; use "run" for the full digest.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "research topic used for category selection")
	searchCmd.Flags().StringSlice("categories", nil, "arXiv categories (comma-separated)")
	searchCmd.Flags().String("match", "", "free text every result must match")
	searchCmd.Flags().Int("days", 7, "publication window in days")
	searchCmd.Flags().Int("limit", 50, "maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	query, _ := cmd.Flags().GetString("query")
	cats, _ := cmd.Flags().GetStringSlice("categories")
	if query == "" && len(cats) == 0 {
		return fmt.Errorf("pass --query or --categories")
	}

	ctx := context.Background()
	log := observability.NewLogger(cfg.Logging)

	st, err := newStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	selected := categories.Valid(cats)
	if len(selected) == 0 {
		provider, err := llm.New(ctx, cfg.LLM, loadedSecrets, log)
		if err != nil {
			return err
		}
		sel := &categories.Selector{Provider: provider, Logger: log}
		selected = sel.Select(ctx, query, nil)
	}
	fmt.Fprintf(os.Stderr, "Searching categories: %v\n", selected)

	days, _ := cmd.Flags().GetInt("days")
	limit, _ := cmd.Flags().GetInt("limit")
	match, _ := cmd.Flags().GetString("match")
	from, to := types.QueryConfig{TimeDurationDays: days}.Window(time.Now())

	papers, err := st.arxiv.Search(ctx, search.Params{
		Categories: selected,
		Query:      match,
		From:       from,
		To:         to,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(papers, os.Stdout)
	}
	search.FormatTable(papers, os.Stdout)
	fmt.Fprintf(os.Stderr, "%d papers\n", len(papers))
	return nil
}
