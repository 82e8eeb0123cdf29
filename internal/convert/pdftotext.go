// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// runCommand runs name with args and returns its stdout. Tests replace it.
var runCommand = func(ctx context.Context, name string, args []string, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Pdftotext converts with the poppler pdftotext binary, which separates
// pages with form feeds.
type Pdftotext struct {
	// Bin overrides the binary path.
	Bin string
}

// Name returns "pdftotext".
func (p *Pdftotext) Name() string { return "pdftotext" }

// Convert runs pdftotext on pdfPath and returns its UTF-8 text.
func (p *Pdftotext) Convert(ctx context.Context, pdfPath string) (string, error) {
	bin := p.Bin
	if bin == "" {
		bin = "pdftotext"
	}

	var out bytes.Buffer
	if err := runCommand(ctx, bin, []string{"-layout", "-enc", "UTF-8", pdfPath, "-"}, &out); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}
	if strings.TrimSpace(strings.ReplaceAll(out.String(), pageBreak, "")) == "" {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
