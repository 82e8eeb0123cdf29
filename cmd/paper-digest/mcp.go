// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/observability"
	"github.com/pdiddy/paper-digest/internal/papertools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the paper tools over MCP on stdio",
	Long: `Mcp exposes the arXiv search, paper content and page count tools the
reviewers and summarizers use as a Model Context Protocol server on stdin
and stdout. Logs always go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Logging.Output = "stderr"
		log := observability.NewLogger(cfg.Logging)

		st, err := newStack(context.Background(), cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		log.Info().Str("version", version).Msg("mcp.serve")
		return papertools.ServeStdio(st.tools, version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
