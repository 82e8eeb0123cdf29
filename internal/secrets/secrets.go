// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// the environment. Each file holds one secret: the filename is the key and
// the trimmed contents are the value.
//
// Known keys: anthropic-api-key, openai-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AnthropicKey = "anthropic-api-key"
	OpenAIKey    = "openai-api-key"
	GeminiKey    = "gemini-api-key"
)

// envNames maps each known key to the environment variable that overrides it.
var envNames = map[string]string{
	AnthropicKey: "ANTHROPIC_API_KEY",
	OpenAIKey:    "OPENAI_API_KEY",
	GeminiKey:    "GEMINI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, then overlays any set environment variables for known keys.
// A missing directory is not an error. Unreadable files produce a warning
// on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets, err := loadDir(dir)
	if err != nil {
		return nil, err
	}
	for key, env := range envNames {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[key] = v
		}
	}
	return secrets, nil
}

func loadDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}
