// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/pdiddy/paper-digest/internal/llm"
)

// Provider answers every request with Respond and records the requests in
// arrival order. It is safe for concurrent use; Respond must be too.
type Provider struct {
	Respond func(req llm.Request) (llm.Response, error)

	mu    sync.Mutex
	calls []llm.Request
}

// Name returns "fake".
func (p *Provider) Name() string { return "fake" }

// Complete records req and returns Respond's answer, or an empty text
// response when Respond is nil.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	if p.Respond == nil {
		return llm.Response{}, nil
	}
	return p.Respond(req)
}

// Calls returns a copy of the recorded requests.
func (p *Provider) Calls() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.calls...)
}

// Text returns a Respond func that always answers with s.
func Text(s string) func(llm.Request) (llm.Response, error) {
	return func(llm.Request) (llm.Response, error) { return llm.Response{Text: s}, nil }
}

// LastUser returns the content of the last user message in req.
func LastUser(req llm.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

// Contains reports whether any message in req contains sub.
func Contains(req llm.Request, sub string) bool {
	for _, m := range req.Messages {
		if strings.Contains(m.Content, sub) {
			return true
		}
	}
	return false
}
