// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/paper-digest/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// Markitdown converts PDFs by piping them through the markitdown container
// image. Its output has no page breaks.
type Markitdown struct {
	runtime container.Runtime
}

// NewMarkitdown verifies the markitdown image exists in rt.
func NewMarkitdown(ctx context.Context, rt container.Runtime) (*Markitdown, error) {
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &Markitdown{runtime: rt}, nil
}

// Name returns "markitdown".
func (m *Markitdown) Name() string { return "markitdown" }

// Convert pipes the PDF at pdfPath through the container and returns the
// Markdown it prints.
func (m *Markitdown) Convert(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("markitdown produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
