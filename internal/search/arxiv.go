// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultAPIBase is the arXiv Atom query endpoint.
const DefaultAPIBase = "http://export.arxiv.org/api/query"

const defaultMaxPerCategory = 2000

// Arxiv queries the arXiv Atom API. All requests share Client, whose rate
// limiter keeps the process within arXiv's request budget.
type Arxiv struct {
	Client *httputil.Client

	// BaseURL overrides DefaultAPIBase.
	BaseURL string

	// MaxPerCategory is max_results for each category request.
	MaxPerCategory int

	Logger zerolog.Logger
}

// Params selects papers for one pipeline run.
type Params struct {
	Categories []string
	// Query, when set, is ANDed into every category query.
	Query string
	From  time.Time
	To    time.Time
	// Limit caps the total returned. Zero means no cap.
	Limit int
}

// Search issues one request per category, newest submissions first, and
// returns the deduplicated papers published inside [From, To], newest
// first. A failing category is logged and skipped; an error is returned
// only when every category fails.
func (a *Arxiv) Search(ctx context.Context, p Params) ([]types.Paper, error) {
	if len(p.Categories) == 0 {
		return nil, fmt.Errorf("no categories to search")
	}

	maxPer := a.MaxPerCategory
	if maxPer <= 0 {
		maxPer = defaultMaxPerCategory
	}

	var all []types.Paper
	var failed []string
	for _, cat := range p.Categories {
		q := "cat:" + cat
		if text := strings.TrimSpace(p.Query); text != "" {
			q = fmt.Sprintf("%s AND all:%s", q, quoteTerms(text))
		}
		v := url.Values{
			"search_query": {q},
			"start":        {"0"},
			"max_results":  {strconv.Itoa(maxPer)},
			"sortBy":       {"submittedDate"},
			"sortOrder":    {"descending"},
		}

		papers, err := a.fetch(ctx, v)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.Logger.Warn().Str("category", cat).Err(err).Msg("fetch_papers.category_error")
			failed = append(failed, cat)
			continue
		}
		a.Logger.Debug().Str("category", cat).Int("entries", len(papers)).Msg("fetch_papers.category_complete")
		all = append(all, papers...)
	}
	if len(failed) == len(p.Categories) {
		return nil, fmt.Errorf("all %d arXiv category requests failed", len(failed))
	}

	return Select(all, p.From, p.To, p.Limit), nil
}

// Query runs a free-text relevance search, for agents looking up related
// work.
func (a *Arxiv) Query(ctx context.Context, text string, limit int) ([]types.Paper, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if limit <= 0 {
		limit = 5
	}
	v := url.Values{
		"search_query": {"all:" + quoteTerms(text)},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	return a.fetch(ctx, v)
}

// Lookup fetches one paper's metadata by id.
func (a *Arxiv) Lookup(ctx context.Context, id string) (types.Paper, error) {
	papers, err := a.fetch(ctx, url.Values{"id_list": {id}})
	if err != nil {
		return types.Paper{}, err
	}
	if len(papers) == 0 {
		return types.Paper{}, fmt.Errorf("arXiv paper %s not found", id)
	}
	return papers[0], nil
}

func (a *Arxiv) fetch(ctx context.Context, v url.Values) ([]types.Paper, error) {
	base := a.BaseURL
	if base == "" {
		base = DefaultAPIBase
	}
	u := base + "?" + v.Encode()

	resp, err := a.Client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.StatusError{URL: u, StatusCode: resp.StatusCode}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if p, ok := e.paper(); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// quoteTerms joins multi-word text into one phrase term.
func quoteTerms(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 1 {
		return fields[0]
	}
	return `"` + strings.Join(fields, " ") + `"`
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// paper converts an entry. Entries without an id or a parseable
// publication date are skipped.
func (e arxivEntry) paper() (types.Paper, bool) {
	id := ExtractID(e.ID)
	if id == "" {
		return types.Paper{}, false
	}
	published, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published))
	if err != nil {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:        id,
		Title:     collapse(e.Title),
		Abstract:  collapse(e.Summary),
		Published: published.UTC(),
		PDFLink:   PDFLink(id),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	return p, true
}

// ExtractID returns the id after "/abs/" in an entry URL, version suffix
// kept ("http://arxiv.org/abs/2401.00001v2" gives "2401.00001v2").
func ExtractID(entryURL string) string {
	const marker = "/abs/"
	i := strings.Index(entryURL, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(entryURL[i+len(marker):])
}

// PDFLink returns the PDF URL for an arXiv id.
func PDFLink(id string) string {
	return "http://arxiv.org/pdf/" + id
}

// collapse folds the line wrapping arXiv puts in titles and abstracts.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
