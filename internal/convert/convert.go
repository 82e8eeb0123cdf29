// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded PDFs into plain text with pluggable
// backends.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-digest/internal/container"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// pageBreak separates pages in converter output.
const pageBreak = "\f"

// Converter transforms a PDF file into text. Backends that know page
// boundaries separate pages with a form feed.
type Converter interface {
	Name() string
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// New returns the converter selected by name. An empty name selects
// pdftotext. Markitdown needs an operational container runtime with the
// image present.
func New(ctx context.Context, name types.ConverterName) (Converter, error) {
	switch name {
	case "", types.ConverterPdftotext:
		return &Pdftotext{}, nil
	case types.ConverterMarkitdown:
		rt, err := container.DetectRuntime(ctx, "")
		if err != nil {
			return nil, err
		}
		return NewMarkitdown(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown converter %q", name)
	}
}

// SplitPages splits converted text into pages on form feeds. A trailing
// empty page, which pdftotext emits after the last page, is dropped.
// Text without form feeds is one page.
func SplitPages(text string) []string {
	pages := strings.Split(text, pageBreak)
	for len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// JoinPages is the inverse of SplitPages.
func JoinPages(pages []string) string {
	return strings.Join(pages, pageBreak)
}
