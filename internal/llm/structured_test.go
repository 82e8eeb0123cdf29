// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripThinking(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<think>hmm</think>cs.SE", "cs.SE"},
		{"<think>a\nb</think>\n  answer  ", "answer"},
		{"plain", "plain"},
		{"answer<think>unterminated", "answer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripThinking(tt.in))
	}
}

func TestClipText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
		cut  bool
	}{
		{"short", "abc", 5, "abc", false},
		{"exact", "abc", 3, "abc", false},
		{"ascii", "abcdef", 4, "abcd", true},
		{"inside two-byte rune", "aé", 2, "a", true},
		{"inside four-byte rune", "ab😀c", 4, "ab", true},
		{"on boundary", "ab😀c", 6, "ab😀", true},
		{"zero", "é", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := ClipText(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.cut, cut)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"thinking first", `<think>{"no":0}</think>{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeStructuredNonStruct(t *testing.T) {
	var m map[string]any
	require.NoError(t, DecodeStructured(`{"x": 1}`, Schema{Name: "m"}, &m))
	assert.Equal(t, float64(1), m["x"])
}

func TestDecodeStructuredBadJSON(t *testing.T) {
	var m map[string]any
	err := DecodeStructured(`not json`, Schema{Name: "m"}, &m)
	var sv *SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "not json", sv.Raw)
}

func TestDecodeStructuredMissingRequired(t *testing.T) {
	type judgment struct {
		Accept    bool    `json:"accept"`
		Reasoning string  `json:"reasoning"`
		Score     float64 `json:"score" validate:"gte=0,lte=10"`
	}
	schema := Schema{Name: "judgment", JSON: map[string]any{
		"type":     "object",
		"required": []string{"accept", "reasoning", "score"},
	}}
	anySchema := Schema{Name: "judgment", JSON: map[string]any{
		"type":     "object",
		"required": []any{"accept", "reasoning", "score"},
	}}

	tests := []struct {
		name    string
		raw     string
		schema  Schema
		missing string
	}{
		{"numeric field absent", `{"accept": true, "reasoning": "ok"}`, schema, "score"},
		{"bool field absent", `{"reasoning": "ok", "score": 9}`, schema, "accept"},
		{"null counts as absent", `{"accept": null, "reasoning": "ok", "score": 9}`, schema, "accept"},
		{"decoded schema list", `{"accept": true, "score": 3}`, anySchema, "reasoning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out judgment
			err := DecodeStructured(tt.raw, tt.schema, &out)
			var sv *SchemaViolationError
			require.ErrorAs(t, err, &sv)
			assert.Contains(t, sv.Error(), tt.missing)
			assert.Equal(t, tt.raw, sv.Raw)
		})
	}

	var out judgment
	require.NoError(t, DecodeStructured(`{"accept": false, "reasoning": "ok", "score": 0}`, schema, &out))
	assert.Equal(t, judgment{Reasoning: "ok"}, out, "explicit zeros are answers")
}

func TestSystemWithSchema(t *testing.T) {
	assert.Equal(t, "sys", systemWithSchema("sys", nil))

	s := &Schema{Name: "score", JSON: map[string]any{"type": "object"}}
	got := systemWithSchema("sys", s)
	assert.True(t, strings.HasPrefix(got, "sys\n\nRespond ONLY"))
	assert.Contains(t, got, "(score)")
	assert.Contains(t, got, `"type": "object"`)
}

func TestToolSpecJSONSchema(t *testing.T) {
	spec := ToolSpec{Params: []ToolParam{
		{Name: "query", Type: "string", Required: true},
		{Name: "limit", Type: "integer"},
	}}
	got := spec.JSONSchema()
	assert.Equal(t, "object", got["type"])
	assert.Equal(t, []string{"query"}, got["required"])
	assert.Len(t, got["properties"], 2)
}
