// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/pdiddy/paper-digest/internal/report"
)

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorize the email exporter to send through Gmail",
	Long: `Gmail-auth prints a consent URL for the OAuth client in
gmail.credentials_file, reads the authorization code from stdin, and saves
the resulting token to gmail.token_file.`,
	RunE: runGmailAuth,
}

func init() {
	rootCmd.AddCommand(gmailAuthCmd)
}

func runGmailAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	oc, err := report.OAuthConfig(cfg.Gmail)
	if err != nil {
		return err
	}

	url := oc.AuthCodeURL("paper-digest", oauth2.AccessTypeOffline)
	fmt.Fprintf(os.Stderr, "Open this URL in a browser and paste the authorization code:\n\n%s\n\ncode: ", url)

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("reading authorization code: %w", err)
	}
	tok, err := oc.Exchange(context.Background(), strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := report.SaveToken(cfg.Gmail.TokenFile, tok); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Token saved to %s\n", cfg.Gmail.TokenFile)
	return nil
}
