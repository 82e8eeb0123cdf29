// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the language-model judgment caller. A Provider performs a
// single completion against a backend (Anthropic, OpenAI-compatible, or
// Gemini); an Agent owns one conversation and layers the tool-use loop,
// history handling, and schema-validated structured output on top.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation. Assistant messages may carry tool
// calls; tool messages answer exactly one call.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall

	// ToolCallID and ToolName identify the call a RoleTool message answers.
	ToolCallID string
	ToolName   string
}

// ToolCall is a model's request to run a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolParam describes one tool argument.
type ToolParam struct {
	Name        string
	Type        string // "string", "integer" or "number"
	Description string
	Required    bool
}

// ToolSpec is the model-facing description of a tool.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// JSONSchema renders the tool's parameters as a JSON Schema object.
func (s ToolSpec) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Params))
	required := []string{}
	for _, p := range s.Params {
		props[p.Name] = map[string]any{"type": p.Type, "description": p.Description}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}

// Schema describes the JSON object a structured call must return.
type Schema struct {
	Name        string
	Description string
	JSON        map[string]any
}

// Request is a single completion request.
type Request struct {
	System      string
	Messages    []Message
	Tools       []ToolSpec
	Schema      *Schema
	Temperature float64
	MaxTokens   int
}

// Response is a single completion result. When ToolCalls is non-empty the
// model is waiting for tool results.
type Response struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// Provider performs one completion against a language-model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrMaxIterations is returned when the tool loop does not finish within
// the agent's iteration budget.
var ErrMaxIterations = errors.New("llm: tool loop exceeded max iterations")

// ErrNoProvider is returned when no backend can be constructed.
var ErrNoProvider = errors.New("llm: no provider configured")

// APIError is a non-success HTTP response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether retrying the request may succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode == 408 || e.StatusCode >= 500
}

// IsTransient reports whether err is worth retrying: transient API
// statuses, network errors, and transport-level URL errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
