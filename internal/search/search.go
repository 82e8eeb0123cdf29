// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fetches candidate papers from arXiv and formats them for
// the command line.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Select deduplicates papers by id (first occurrence wins), keeps those
// published inside [from, to], and returns them newest first, capped at
// limit. A zero from or to leaves that side open; limit <= 0 means no cap.
func Select(papers []types.Paper, from, to time.Time, limit int) []types.Paper {
	seen := make(map[string]bool, len(papers))
	var out []types.Paper
	for _, p := range papers {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if !from.IsZero() && p.Published.Before(from) {
			continue
		}
		if !to.IsZero() && p.Published.After(to) {
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b types.Paper) int {
		return b.Published.Compare(a.Published)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-18s  %-60s  %-20s  %-10s  %s\n",
		"#", "ID", "Title", "Authors", "Published", "Categories")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-18s  %-60s  %-20s  %-10s  %s\n",
			i+1, p.ID, truncate(p.Title, 60), formatAuthors(p.Authors),
			p.Published.Format("2006-01-02"), strings.Join(p.Categories, ","))
	}
	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
