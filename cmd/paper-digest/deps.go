// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/acquire"
	"github.com/pdiddy/paper-digest/internal/cache"
	"github.com/pdiddy/paper-digest/internal/convert"
	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/internal/papertools"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// stack is the shared arXiv, cache and tool wiring used by several
// subcommands.
type stack struct {
	client  *httputil.Client
	arxiv   *search.Arxiv
	cache   *cache.Cache
	fetcher *acquire.Fetcher
	tools   *papertools.Toolkit
}

func newStack(ctx context.Context, cfg types.Config, log zerolog.Logger) (*stack, error) {
	burst := int(math.Max(1, math.Ceil(cfg.Arxiv.RequestsPerSecond)))
	client := httputil.NewClient(cfg.Arxiv.Timeout, httputil.NewRateLimiter(cfg.Arxiv.RequestsPerSecond, burst), cfg.Arxiv.UserAgent)

	arxiv := &search.Arxiv{
		Client:         client,
		BaseURL:        cfg.Arxiv.APIBase,
		MaxPerCategory: cfg.Arxiv.MaxResultsPerCategory,
		Logger:         log.With().Str("component", "arxiv").Logger(),
	}

	c, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	conv, err := convert.New(ctx, cfg.Converter)
	if err != nil {
		c.Close()
		return nil, err
	}
	fetcher := &acquire.Fetcher{
		Cache:     c,
		Client:    client,
		Converter: conv,
		Logger:    log.With().Str("component", "acquire").Logger(),
	}

	return &stack{
		client:  client,
		arxiv:   arxiv,
		cache:   c,
		fetcher: fetcher,
		tools:   &papertools.Toolkit{Search: arxiv, Pages: fetcher},
	}, nil
}

func (s *stack) Close() error { return s.cache.Close() }
