// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const htmlFallbackText = "This email requires an HTML compatible viewer."

// Sender sends one RFC 5322 message.
type Sender interface {
	Send(ctx context.Context, raw []byte) error
}

// GmailSender sends through the Gmail API as the authorized user.
type GmailSender struct {
	Service *gmail.Service
}

// Send base64url-encodes raw and sends it.
func (g *GmailSender) Send(ctx context.Context, raw []byte) error {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	if _, err := g.Service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sending gmail message: %w", err)
	}
	return nil
}

// OAuthConfig reads the OAuth client credentials file.
func OAuthConfig(cfg types.GmailConfig) (*oauth2.Config, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading gmail credentials: %w", err)
	}
	oc, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parsing gmail credentials: %w", err)
	}
	return oc, nil
}

// NewGmailSender builds a sender from the credentials and a token saved by
// SaveToken. Refreshed tokens are not written back.
func NewGmailSender(ctx context.Context, cfg types.GmailConfig) (*GmailSender, error) {
	oc, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading gmail token (run gmail-auth first): %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parsing gmail token: %w", err)
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oc.Client(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}
	return &GmailSender{Service: svc}, nil
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// BuildMessage builds the digest email. HTML content is sent as
// multipart/alternative with a plain-text fallback part; markdown is sent as
// plain text.
func BuildMessage(to, subject, content string, format types.Format) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	buf.WriteString("From: me\r\n")
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if format != types.FormatHTML {
		buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		if err := writeQP(&buf, content); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())
	for _, part := range []struct{ ctype, body string }{
		{"text/plain", htmlFallbackText},
		{"text/html", content},
	} {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", part.ctype+"; charset=\"utf-8\"")
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeQP(w, part.body); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQP(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}
