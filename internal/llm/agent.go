// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

const (
	defaultMaxIterations = 50
	defaultMaxTokens     = 8192
)

// ToolHandler runs a tool with the model-supplied JSON arguments.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is a tool an agent may call during GenerateText.
type Tool struct {
	Spec    ToolSpec
	Handler ToolHandler
}

// AgentConfig describes an agent. The same config may build many agents;
// each gets its own conversation.
type AgentConfig struct {
	Name          string
	Instructions  string
	Tools         []Tool
	MaxIterations int
	Temperature   float64
	MaxTokens     int
	Logger        zerolog.Logger
}

// Agent is one LLM persona with its own conversation. Calls on an Agent are
// serialized; concurrent work needs separate agents.
type Agent struct {
	cfg      AgentConfig
	provider Provider
	tools    map[string]Tool
	conv     *Conversation
	mu       sync.Mutex
}

// NewAgent returns an agent with a fresh, empty conversation. Two agents
// built from the same config share no state.
func NewAgent(p Provider, cfg AgentConfig) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	tools := make(map[string]Tool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		tools[t.Spec.Name] = t
	}
	return &Agent{cfg: cfg, provider: p, tools: tools, conv: &Conversation{}}
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.cfg.Name }

// History returns a copy of the conversation so far.
func (a *Agent) History() []Message { return a.conv.Messages() }

// ClearHistory resets the conversation to empty.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv.Clear()
}

type callOptions struct {
	useHistory  bool
	useTools    bool
	temperature *float64
	maxTokens   int
}

// CallOption adjusts a single Generate call.
type CallOption func(*callOptions)

// WithoutHistory sends only the new message and leaves the conversation
// untouched.
func WithoutHistory() CallOption { return func(o *callOptions) { o.useHistory = false } }

// WithoutTools hides the agent's tools for this call.
func WithoutTools() CallOption { return func(o *callOptions) { o.useTools = false } }

// WithTemperature overrides the sampling temperature for this call.
func WithTemperature(t float64) CallOption { return func(o *callOptions) { o.temperature = &t } }

// WithMaxTokens overrides the output token limit for this call.
func WithMaxTokens(n int) CallOption { return func(o *callOptions) { o.maxTokens = n } }

func (a *Agent) options(opts []CallOption) callOptions {
	o := callOptions{useHistory: true, useTools: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (a *Agent) request(o callOptions, msgs []Message) Request {
	req := Request{
		System:      a.cfg.Instructions,
		Messages:    msgs,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}
	if o.temperature != nil {
		req.Temperature = *o.temperature
	}
	if o.maxTokens > 0 {
		req.MaxTokens = o.maxTokens
	}
	return req
}

// GenerateText sends message and runs the tool loop until the model answers
// in plain text. On success the exchange is appended to the conversation
// unless WithoutHistory is given; on failure the conversation is unchanged.
func (a *Agent) GenerateText(ctx context.Context, message string, opts ...CallOption) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	o := a.options(opts)
	var prior []Message
	if o.useHistory {
		prior = a.conv.Messages()
	}
	turn := []Message{{Role: RoleUser, Content: message}}

	var specs []ToolSpec
	if o.useTools {
		for _, t := range a.cfg.Tools {
			specs = append(specs, t.Spec)
		}
	}

	for iter := 0; iter < a.cfg.MaxIterations; iter++ {
		req := a.request(o, append(append([]Message(nil), prior...), turn...))
		req.Tools = specs

		resp, err := a.provider.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s: %w", a.cfg.Name, err)
		}

		if len(resp.ToolCalls) == 0 {
			turn = append(turn, Message{Role: RoleAssistant, Content: resp.Text})
			if o.useHistory {
				a.conv.Append(turn...)
			}
			return resp.Text, nil
		}

		turn = append(turn, Message{Role: RoleAssistant, Content: resp.Text, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			turn = append(turn, a.runTool(ctx, call))
		}
	}
	return "", fmt.Errorf("%s: %w (%d)", a.cfg.Name, ErrMaxIterations, a.cfg.MaxIterations)
}

// runTool executes one call. Unknown tools and handler errors are reported
// back to the model as the tool result.
func (a *Agent) runTool(ctx context.Context, call ToolCall) Message {
	msg := Message{Role: RoleTool, ToolCallID: call.ID, ToolName: call.Name}

	tool, ok := a.tools[call.Name]
	if !ok {
		msg.Content = fmt.Sprintf("Error: unknown tool %q", call.Name)
		return msg
	}

	out, err := tool.Handler(ctx, call.Arguments)
	if err != nil {
		a.cfg.Logger.Debug().Str("agent", a.cfg.Name).Str("tool", call.Name).Err(err).Msg("llm.tool_error")
		msg.Content = "Error: " + err.Error()
		return msg
	}
	msg.Content = out
	return msg
}

// GenerateStructured sends message without tools and decodes the reply into
// out, which must be a pointer to a struct. The reply is validated against
// out's `validate` tags; a decode or validation failure is returned as a
// *SchemaViolationError.
func (a *Agent) GenerateStructured(ctx context.Context, message string, schema Schema, out any, opts ...CallOption) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	o := a.options(opts)
	var msgs []Message
	if o.useHistory {
		msgs = a.conv.Messages()
	}
	user := Message{Role: RoleUser, Content: message}
	msgs = append(msgs, user)

	req := a.request(o, msgs)
	req.Schema = &schema

	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", a.cfg.Name, err)
	}

	if err := DecodeStructured(resp.Text, schema, out); err != nil {
		return err
	}
	if o.useHistory {
		a.conv.Append(user, Message{Role: RoleAssistant, Content: resp.Text})
	}
	return nil
}
