// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOpenAIBaseURL is used when no base URL is configured.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls an OpenAI-compatible Chat Completions endpoint. BaseURL lets
// it target local servers such as LM Studio or vLLM. Structured calls use
// response_format json_schema.
type OpenAI struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

// Name returns the provider identifier.
func (o *OpenAI) Name() string { return "openai" }

type openAIRequest struct {
	Model          string             `json:"model"`
	Messages       []openAIMessage    `json:"messages"`
	Tools          []openAITool       `json:"tools,omitempty"`
	ResponseFormat *openAIResponseFmt `json:"response_format,omitempty"`
	Temperature    float64            `json:"temperature"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    *string          `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openAIFunctionCall `json:"function"`
}

type openAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openAIResponseFmt struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one chat completion request.
func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	body := openAIRequest{
		Model:       o.Model,
		Messages:    openAIMessages(req.System, req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, openAITool{
			Type:     "function",
			Function: openAIFunction{Name: t.Name, Description: t.Description, Parameters: t.JSONSchema()},
		})
	}
	if req.Schema != nil {
		name := req.Schema.Name
		if name == "" {
			name = "response"
		}
		body.ResponseFormat = &openAIResponseFmt{
			Type:       "json_schema",
			JSONSchema: &openAIJSONSchema{Name: name, Schema: req.Schema.JSON},
		}
	}

	base := o.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	headers := map[string]string{}
	if o.APIKey != "" {
		headers["Authorization"] = "Bearer " + o.APIKey
	}

	var out openAIResponse
	if err := postJSON(ctx, o.Client, o.Name(), strings.TrimSuffix(base, "/")+"/chat/completions", headers, body, &out); err != nil {
		return Response{}, err
	}
	if len(out.Choices) == 0 {
		return Response{}, fmt.Errorf("openai API returned no choices")
	}

	choice := out.Choices[0]
	resp := Response{StopReason: choice.FinishReason}
	if choice.Message.Content != nil {
		resp.Text = *choice.Message.Content
	}
	for _, c := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: json.RawMessage(c.Function.Arguments)})
	}
	return resp, nil
}

func openAIMessages(system string, msgs []Message) []openAIMessage {
	var out []openAIMessage
	if system != "" {
		out = append(out, openAIMessage{Role: "system", Content: &system})
	}
	for _, m := range msgs {
		content := m.Content
		switch m.Role {
		case RoleUser:
			out = append(out, openAIMessage{Role: "user", Content: &content})
		case RoleAssistant:
			msg := openAIMessage{Role: "assistant", Content: &content}
			for _, c := range m.ToolCalls {
				args := string(c.Arguments)
				if args == "" {
					args = "{}"
				}
				msg.ToolCalls = append(msg.ToolCalls, openAIToolCall{
					ID: c.ID, Type: "function",
					Function: openAIFunctionCall{Name: c.Name, Arguments: args},
				})
			}
			out = append(out, msg)
		case RoleTool:
			out = append(out, openAIMessage{Role: "tool", Content: &content, ToolCallID: m.ToolCallID})
		}
	}
	return out
}
