// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categories maps a research query to the arXiv categories worth
// searching.
package categories

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/llm"
)

// MaxSelected caps how many categories one query searches.
const MaxSelected = 6

// Fallback is used when selection yields no known category.
var Fallback = []string{"cs.SE", "cs.AI"}

// Category is one arXiv subject class.
type Category struct {
	Code        string
	Name        string
	Description string
}

var byCode = func() map[string]Category {
	m := make(map[string]Category, len(All))
	for _, c := range All {
		m[c.Code] = c
	}
	return m
}()

// Known reports whether code is in the table.
func Known(code string) bool {
	_, ok := byCode[code]
	return ok
}

// Valid returns the known codes of codes, trimmed and deduplicated in
// order, at most MaxSelected.
func Valid(codes []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if !Known(c) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == MaxSelected {
			break
		}
	}
	return out
}

// FormatTable writes the category table to w.
func FormatTable(w io.Writer) {
	for _, c := range All {
		fmt.Fprintf(w, "%-6s  %s\n", c.Code, c.Name)
	}
}

func allowedList() string {
	var b strings.Builder
	for _, c := range All {
		fmt.Fprintf(&b, "- %s (%s): %s\n", c.Code, c.Name, c.Description)
	}
	return b.String()
}

var instructions = `You are a strict arXiv category selector for computer-science-related queries.

TASK
Given a single research keyword/query, choose 2 to 6 arXiv categories from the ALLOWED LIST below that are most likely to contain directly relevant papers.

SELECTION RULES
- Only choose categories from the ALLOWED LIST (match IDs exactly, e.g., "cs.SE").
- Prefer categories that would frequently contain papers matching the query's core topic.
- If the query spans multiple subfields, include multiple categories (still 2 to 6).
- If the query is vague, pick the best broad-fit categories rather than guessing niche ones.

ALLOWED LIST (IDs, Names, and Descriptions)
` + allowedList()

type selection struct {
	Categories []string `json:"categories" validate:"required,min=1"`
}

var selectionSchema = llm.Schema{
	Name:        "category_selection",
	Description: "arXiv categories to search",
	JSON: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"categories": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
				"maxItems": MaxSelected,
			},
		},
		"required": []string{"categories"},
	},
}

// Selector asks the category-selector agent which categories fit a query.
type Selector struct {
	Provider llm.Provider
	Logger   zerolog.Logger
}

// Select returns the categories to search for query. Explicit categories
// skip the model and are filtered to known codes. The result is never
// empty: a failed call, or nothing valid, yields Fallback.
func (s *Selector) Select(ctx context.Context, query string, explicit []string) []string {
	if len(explicit) > 0 {
		if valid := Valid(explicit); len(valid) > 0 {
			s.Logger.Info().Strs("categories", valid).Msg("select_categories.explicit")
			return valid
		}
		s.Logger.Warn().Strs("categories", explicit).Msg("select_categories.explicit_invalid")
	}

	agent := llm.NewAgent(s.Provider, llm.AgentConfig{
		Name:         "category_selector",
		Instructions: instructions,
		Logger:       s.Logger,
	})

	var out selection
	err := agent.GenerateStructured(ctx, fmt.Sprintf("QUERY:\n%s\n\n", query), selectionSchema, &out)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("select_categories.error")
		return append([]string(nil), Fallback...)
	}

	valid := Valid(out.Categories)
	if len(valid) == 0 {
		s.Logger.Warn().Strs("categories", out.Categories).Msg("select_categories.invalid_codes")
		return append([]string(nil), Fallback...)
	}
	s.Logger.Info().Strs("categories", valid).Msg("select_categories.complete")
	return valid
}
