// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// New builds the provider named by cfg and wraps it with the configured
// retry policy. The API key comes from cfg.APIKey, falling back to keys
// (as loaded by secrets.Load). An OpenAI-compatible provider with a custom
// base URL may run without a key.
func New(ctx context.Context, cfg types.LLMConfig, keys map[string]string, logger zerolog.Logger) (Provider, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	key := func(name string) string {
		if cfg.APIKey != "" {
			return cfg.APIKey
		}
		return keys[name]
	}

	var p Provider
	switch cfg.Provider {
	case types.ProviderAnthropic:
		k := key(secrets.AnthropicKey)
		if k == "" {
			return nil, fmt.Errorf("%w: anthropic requires %s", ErrNoProvider, secrets.AnthropicKey)
		}
		p = &Anthropic{APIKey: k, Model: cfg.Model, Client: client}
	case types.ProviderOpenAI:
		k := key(secrets.OpenAIKey)
		if k == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: openai requires %s or a base_url", ErrNoProvider, secrets.OpenAIKey)
		}
		p = &OpenAI{APIKey: k, Model: cfg.Model, BaseURL: cfg.BaseURL, Client: client}
	case types.ProviderGemini:
		k := key(secrets.GeminiKey)
		if k == "" {
			return nil, fmt.Errorf("%w: gemini requires %s", ErrNoProvider, secrets.GeminiKey)
		}
		g, err := NewGemini(ctx, k, cfg.Model, client)
		if err != nil {
			return nil, err
		}
		p = g
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProvider, cfg.Provider)
	}

	logger.Debug().Str("provider", p.Name()).Str("model", cfg.Model).Msg("llm.provider")
	return Retrying(p, RetryPolicy{MaxRetries: cfg.MaxRetries, Delay: cfg.RetryDelay, Logger: logger}), nil
}
