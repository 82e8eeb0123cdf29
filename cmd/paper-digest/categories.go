// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/categories"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the arXiv categories queries may search",
	Run: func(cmd *cobra.Command, args []string) {
		categories.FormatTable(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
