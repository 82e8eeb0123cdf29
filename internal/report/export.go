// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// ExportFunc delivers rendered content to dest.
type ExportFunc func(ctx context.Context, content, dest string, format types.Format) types.ExportStatus

// Exporter delivers the digest once per configured exporter. Mail may be nil
// when no exporter sends email.
type Exporter struct {
	ReportsDir string
	Mail       Sender
	Now        func() time.Time
	Logger     zerolog.Logger
}

func (e *Exporter) dispatch() map[types.Destination]ExportFunc {
	return map[types.Destination]ExportFunc{
		types.DestinationLocal: e.exportLocal,
		types.DestinationEmail: e.exportEmail,
	}
}

// Export renders results for cfg and delivers them. Failures are reported in
// the returned status, never as a panic or abort.
func (e *Exporter) Export(ctx context.Context, cfg types.ExporterConfig, user types.UserConfig, results []types.WorkflowResult) types.ExportStatus {
	name := cfg.Name()
	fail := func(err error) types.ExportStatus {
		e.Logger.Error().Str("exporter", name).Err(err).Msg("export.error")
		return types.ExportStatus{Exporter: name, Status: types.StatusError, Message: err.Error()}
	}

	export, ok := e.dispatch()[cfg.Destination]
	if !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnsupportedDestination, cfg.Destination))
	}
	content, err := Render(cfg.Format, Input{UserName: user.Name, SummaryType: cfg.SummaryType, Results: results})
	if err != nil {
		return fail(err)
	}

	dest := user.Name
	if cfg.Destination == types.DestinationEmail {
		dest = user.Email
	}
	st := export(ctx, content, dest, cfg.Format)
	st.Exporter = name
	ev := e.Logger.Info()
	if st.Status == types.StatusError {
		ev = e.Logger.Error()
	}
	ev.Str("exporter", name).Str("status", string(st.Status)).Str("message", st.Message).Msg("export.complete")
	return st
}

// exportLocal writes <ReportsDir>/<dest>/report_YYYYmmdd_HHMMSS.<ext>.
func (e *Exporter) exportLocal(_ context.Context, content, dest string, format types.Format) types.ExportStatus {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	name := fmt.Sprintf("report_%s.%s", now().Format("20060102_150405"), format.Extension())
	path := filepath.Join(e.ReportsDir, filepath.Clean("/" + dest)[1:], name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return types.ExportStatus{Status: types.StatusError, Message: err.Error()}
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o644); err != nil {
		return types.ExportStatus{Status: types.StatusError, Message: err.Error()}
	}
	return types.ExportStatus{Status: types.StatusSuccess, Message: "Report saved to " + path, Path: path}
}

func (e *Exporter) exportEmail(ctx context.Context, content, dest string, format types.Format) types.ExportStatus {
	if e.Mail == nil {
		return types.ExportStatus{Status: types.StatusError, Message: "email exporter is not configured"}
	}
	if dest == "" {
		return types.ExportStatus{Status: types.StatusError, Message: "no recipient email address"}
	}
	raw, err := BuildMessage(dest, Subject, content, format)
	if err != nil {
		return types.ExportStatus{Status: types.StatusError, Message: err.Error()}
	}
	if err := e.Mail.Send(ctx, raw); err != nil {
		return types.ExportStatus{Status: types.StatusError, Message: err.Error()}
	}
	return types.ExportStatus{Status: types.StatusSuccess, Message: "Email sent to " + dest}
}
