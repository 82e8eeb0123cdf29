// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-digest pipeline:
// papers fetched from arXiv, the per-stage judgment records produced by LLM
// agents, the per-query rollup, and the run configuration.
package types

import (
	"strings"
	"time"
)

// Paper holds metadata for a paper fetched from arXiv. A Paper is never
// mutated after it is fetched; WithFullText returns an enriched copy.
type Paper struct {
	// ID is the arXiv identifier including its version (e.g. "2401.01234v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories lists the arXiv category tags (e.g. "cs.SE").
	Categories []string `json:"categories" yaml:"categories"`

	// Published is the submission timestamp of the first version.
	Published time.Time `json:"published" yaml:"published"`

	// PDFLink is the URL the full text is retrieved from.
	PDFLink string `json:"pdf_link" yaml:"pdf_link"`

	// FullTextPath is the local path to the extracted markdown, set by the
	// enrichment stage.
	FullTextPath string `json:"full_text_path,omitempty" yaml:"full_text_path,omitempty"`
}

// WithFullText returns a copy of p with FullTextPath set. Slices are cloned so
// the copy shares no backing arrays with p.
func (p Paper) WithFullText(path string) Paper {
	out := p
	out.Authors = append([]string(nil), p.Authors...)
	out.Categories = append([]string(nil), p.Categories...)
	out.FullTextPath = path
	return out
}

// HasFullText reports whether pre-fetched content is attached.
func (p Paper) HasFullText() bool {
	return p.FullTextPath != ""
}

// ShortAuthors joins the first n authors, appending "..." when more exist.
func (p Paper) ShortAuthors(n int) string {
	if len(p.Authors) <= n {
		return strings.Join(p.Authors, ", ")
	}
	return strings.Join(p.Authors[:n], ", ") + "..."
}
