// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package papertools implements the paper tools agents use during review:
// searching arXiv and reading a paper's pages. The same handlers back the
// in-process llm.Tool values and the MCP stdio server.
package papertools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-digest/internal/llm"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	ToolSearchArxiv  = "search_arxiv"
	ToolPaperContent = "get_paper_content"
	ToolPageCount    = "get_paper_page_count"

	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// Searcher runs free-text arXiv searches.
type Searcher interface {
	Query(ctx context.Context, text string, limit int) ([]types.Paper, error)
}

// PageSource returns a paper's text split into pages.
type PageSource interface {
	Pages(ctx context.Context, id string) ([]string, error)
}

// Toolkit holds the backends the tools call.
type Toolkit struct {
	Search Searcher
	Pages  PageSource
}

type searchHit struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Summary    string   `json:"summary"`
	Published  string   `json:"published"`
	PDFLink    string   `json:"pdf_link"`
	Categories []string `json:"categories"`
}

// SearchArxiv returns matching papers as indented JSON.
func (t *Toolkit) SearchArxiv(ctx context.Context, query string, limit int) (string, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	papers, err := t.Search.Query(ctx, query, limit)
	if err != nil {
		return "", fmt.Errorf("searching arXiv: %w", err)
	}
	if len(papers) == 0 {
		return "No papers found matching your query.", nil
	}

	hits := make([]searchHit, len(papers))
	for i, p := range papers {
		hits[i] = searchHit{
			ID:         p.ID,
			Title:      p.Title,
			Authors:    p.Authors,
			Summary:    p.Abstract,
			Published:  p.Published.Format(time.RFC3339),
			PDFLink:    p.PDFLink,
			Categories: p.Categories,
		}
	}
	b, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PaperContent returns the text of the selected pages, or every page when
// pages is empty. See ParsePages for the selection syntax.
func (t *Toolkit) PaperContent(ctx context.Context, id, pages string) (string, error) {
	all, err := t.Pages.Pages(ctx, id)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", id, err)
	}
	if strings.TrimSpace(pages) == "" {
		return strings.Join(all, "\n\n"), nil
	}

	sel, err := ParsePages(pages, len(all))
	if err != nil {
		return "", err
	}
	parts := make([]string, len(sel))
	for i, n := range sel {
		parts[i] = all[n-1]
	}
	return strings.Join(parts, "\n\n"), nil
}

// PageCount reports how many pages the paper has.
func (t *Toolkit) PageCount(ctx context.Context, id string) (string, error) {
	all, err := t.Pages.Pages(ctx, id)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", id, err)
	}
	b, _ := json.Marshal(map[string]any{"paper_id": id, "page_count": len(all)})
	return string(b), nil
}

// ParsePages parses a 1-based page selection such as "2", "1-3" or
// "1,4-5" against a paper of n pages. Pages beyond n are ignored; a
// selection with no page in range is an error. Duplicates are dropped and
// order is kept.
func ParsePages(spec string, n int) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	add := func(p int) {
		if p >= 1 && p <= n && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || a < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || b < a {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := a; p <= b && p <= n; p++ {
			add(p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no pages of %q in range 1-%d", spec, n)
	}
	return out, nil
}

var (
	searchSpec = llm.ToolSpec{
		Name:        ToolSearchArxiv,
		Description: "Search arXiv for papers matching keywords. Returns JSON metadata of the top results.",
		Params: []llm.ToolParam{
			{Name: "query", Type: "string", Description: "Search keywords or phrases", Required: true},
			{Name: "limit", Type: "integer", Description: "Maximum number of results (default 5)"},
		},
	}
	contentSpec = llm.ToolSpec{
		Name:        ToolPaperContent,
		Description: "Get the text of an arXiv paper, optionally only some pages.",
		Params: []llm.ToolParam{
			{Name: "paper_id", Type: "string", Description: "arXiv paper id, e.g. 2401.00001v1", Required: true},
			{Name: "pages", Type: "string", Description: `1-based pages such as "2", "1-3" or "1,4-5"; omit for all pages`},
		},
	}
	pageCountSpec = llm.ToolSpec{
		Name:        ToolPageCount,
		Description: "Get the number of pages of an arXiv paper.",
		Params: []llm.ToolParam{
			{Name: "paper_id", Type: "string", Description: "arXiv paper id", Required: true},
		},
	}
)

type toolArgs struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
	PaperID string `json:"paper_id"`
	Pages   string `json:"pages"`
}

func decodeArgs(raw json.RawMessage) (toolArgs, error) {
	var a toolArgs
	if len(raw) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return a, fmt.Errorf("invalid arguments: %w", err)
	}
	return a, nil
}

// Tools returns the toolkit as llm tools.
func (t *Toolkit) Tools() []llm.Tool {
	return []llm.Tool{
		{Spec: searchSpec, Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			a, err := decodeArgs(raw)
			if err != nil {
				return "", err
			}
			return t.SearchArxiv(ctx, a.Query, a.Limit)
		}},
		{Spec: contentSpec, Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			a, err := decodeArgs(raw)
			if err != nil {
				return "", err
			}
			if a.PaperID == "" {
				return "", fmt.Errorf("paper_id is required")
			}
			return t.PaperContent(ctx, a.PaperID, a.Pages)
		}},
		{Spec: pageCountSpec, Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			a, err := decodeArgs(raw)
			if err != nil {
				return "", err
			}
			if a.PaperID == "" {
				return "", fmt.Errorf("paper_id is required")
			}
			return t.PageCount(ctx, a.PaperID)
		}},
	}
}
