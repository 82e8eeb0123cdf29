// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/observability"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <arxiv-id>...",
	Short: "Download and convert papers into the full-text cache",
	Long: `Fetch looks up each paper on arXiv, downloads its PDF, converts it to
page-separated markdown, and stores it in the cache. Papers already cached
are reported and not downloaded again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	log := observability.NewLogger(cfg.Logging)

	st, err := newStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var failed int
	for _, id := range args {
		paper, err := st.arxiv.Lookup(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		path, cached, err := st.fetcher.FetchFullText(ctx, paper)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed++
			continue
		}
		state := "fetched"
		if cached {
			state = "cached"
		}
		fmt.Printf("%s\t%s\t%s\n", paper.ID, state, path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d papers failed", failed, len(args))
	}
	return nil
}
