// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API through the genai SDK. Tools become function
// declarations; structured calls request application/json output with the
// schema given as a system instruction.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider for model.
func NewGemini(ctx context.Context, apiKey, model string, httpClient *http.Client) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns the provider identifier.
func (g *Gemini) Name() string { return "gemini" }

// Complete sends one GenerateContent request.
func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system := systemWithSchema(req.System, req.Schema); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, geminiDeclaration(t))
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents, err := geminiContents(req.Messages)
	if err != nil {
		return Response{}, err
	}

	out, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return Response{}, &APIError{Provider: g.Name(), StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return Response{}, fmt.Errorf("calling gemini API: %w", err)
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Content == nil {
		return Response{}, fmt.Errorf("gemini API returned no candidates")
	}

	cand := out.Candidates[0]
	resp := Response{StopReason: string(cand.FinishReason)}
	var text []string
	for i, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return Response{}, fmt.Errorf("encoding function call args: %w", err)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = fmt.Sprintf("call_%d", i)
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{ID: id, Name: part.FunctionCall.Name, Arguments: args})
		case part.Text != "" && !part.Thought:
			text = append(text, part.Text)
		}
	}
	resp.Text = strings.Join(text, "")
	return resp, nil
}

func geminiDeclaration(t ToolSpec) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(t.Params))
	var required []string
	for _, p := range t.Params {
		props[p.Name] = &genai.Schema{Type: geminiType(p.Type), Description: p.Description}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return &genai.FunctionDeclaration{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required},
	}
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// geminiContents converts the conversation. Tool results travel as
// function responses in a user turn; consecutive results share one turn.
func geminiContents(msgs []Message) ([]*genai.Content, error) {
	var out []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		case RoleAssistant:
			c := &genai.Content{Role: string(genai.RoleModel)}
			if m.Content != "" {
				c.Parts = append(c.Parts, &genai.Part{Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				args := map[string]any{}
				if len(call.Arguments) > 0 {
					if err := json.Unmarshal(call.Arguments, &args); err != nil {
						return nil, fmt.Errorf("decoding args of %s: %w", call.Name, err)
					}
				}
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: call.ID, Name: call.Name, Args: args}})
			}
			out = append(out, c)
		case RoleTool:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.ToolName,
				Response: map[string]any{"output": m.Content},
			}}
			if n := len(out); n > 0 && out[n-1].Role == string(genai.RoleUser) && out[n-1].Parts[0].FunctionResponse != nil {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{part}})
		}
	}
	return out, nil
}
