// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads paper PDFs, converts them to text, and keeps
// the results in the on-disk cache.
package acquire

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/cache"
	"github.com/pdiddy/paper-digest/internal/convert"
	"github.com/pdiddy/paper-digest/internal/fanout"
	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// Fetcher resolves a paper's full text: cache first, then download and
// convert.
type Fetcher struct {
	Cache     *cache.Cache
	Client    *httputil.Client
	Converter convert.Converter
	Logger    zerolog.Logger
}

// FetchFullText returns the path of the paper's cached full text and
// whether it was already cached. On a miss it downloads the PDF (unless
// the PDF is cached), converts it, and stores the pages.
func (f *Fetcher) FetchFullText(ctx context.Context, paper types.Paper) (string, bool, error) {
	log := f.Logger.With().Str("paper_id", paper.ID).Logger()

	if _, ok, err := f.Cache.Markdown(paper.ID); err != nil {
		log.Warn().Err(err).Msg("download_papers.cache_read_error")
	} else if ok {
		log.Debug().Msg("download_papers.cache_hit")
		return f.Cache.MarkdownPath(paper.ID), true, nil
	}

	pdfPath := f.Cache.PDFPath(paper.ID)
	if !f.Cache.HasPDF(paper.ID) {
		link := paper.PDFLink
		if link == "" {
			link = search.PDFLink(paper.ID)
		}
		var err error
		if pdfPath, err = f.download(ctx, paper.ID, link); err != nil {
			return "", false, err
		}
		log.Debug().Str("pdf_link", link).Msg("download_papers.downloaded")
	}

	text, err := f.Converter.Convert(ctx, pdfPath)
	if err != nil {
		return "", false, err
	}

	path, err := f.Cache.Store(ctx, paper, convert.SplitPages(text))
	if err != nil {
		return "", false, err
	}
	log.Debug().Str("markdown_path", path).Int("content_length", len(text)).Msg("download_papers.success")
	return path, false, nil
}

func (f *Fetcher) download(ctx context.Context, id, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.Client.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &httputil.StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return f.Cache.StorePDF(id, resp.Body)
}

// Pages returns the paper's text split into 1-based pages, fetching it
// first when it is not cached.
func (f *Fetcher) Pages(ctx context.Context, id string) ([]string, error) {
	if pages, ok, err := f.Cache.Pages(id); err == nil && ok {
		return pages, nil
	}
	if _, _, err := f.FetchFullText(ctx, types.Paper{ID: id, PDFLink: search.PDFLink(id)}); err != nil {
		return nil, err
	}
	pages, ok, err := f.Cache.Pages(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no text available for %s", id)
	}
	return pages, nil
}

// TextFetcher resolves one paper's full text to a local file.
type TextFetcher interface {
	FetchFullText(ctx context.Context, paper types.Paper) (path string, cached bool, err error)
}

// Enrich fetches full text for every paper concurrently and returns copies
// with FullTextPath set. A paper whose fetch fails is returned unchanged;
// later stages fall back to tool access for it. Input papers are never
// modified and the output keeps their order.
func Enrich(ctx context.Context, f TextFetcher, papers []types.Paper, cfg fanout.Config) []types.Paper {
	if cfg.Stage == "" {
		cfg.Stage = "download_papers"
	}
	results := fanout.Run(ctx, cfg, papers, paperID, func(ctx context.Context, p types.Paper) (string, error) {
		path, _, err := f.FetchFullText(ctx, p)
		return path, err
	})

	out := make([]types.Paper, len(papers))
	enriched := 0
	for i, r := range results {
		if !r.OK() {
			out[i] = r.Item
			continue
		}
		out[i] = r.Item.WithFullText(r.Value)
		enriched++
	}
	cfg.Logger.Info().Int("total_papers", len(papers)).Int("enriched", enriched).
		Int("failed", len(papers)-enriched).Msg("download_papers.complete")
	return out
}

func paperID(p types.Paper) string { return p.ID }
