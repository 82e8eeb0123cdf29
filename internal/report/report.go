// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the combined digest of all query results and
// delivers it through the configured exporters.
package report

import (
	"errors"
	"fmt"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Subject is the title of every digest.
const Subject = "arXiv Paper Weekly Update"

var (
	ErrUnsupportedFormat      = errors.New("report: unsupported format")
	ErrUnsupportedDestination = errors.New("report: unsupported destination")
)

// Input is everything a renderer needs.
type Input struct {
	UserName    string
	SummaryType types.SummaryType
	Results     []types.WorkflowResult
}

// RenderFunc renders one report format.
type RenderFunc func(Input) (string, error)

// Renderers maps each format to its renderer.
var Renderers = map[types.Format]RenderFunc{
	types.FormatMarkdown: RenderMarkdown,
	types.FormatHTML:     RenderHTML,
}

// Render renders in with the renderer registered for f.
func Render(f types.Format, in Input) (string, error) {
	render, ok := Renderers[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return render(in)
}
