// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SchemaViolationError reports structured output that could not be decoded
// into, or failed validation against, the requested schema.
type SchemaViolationError struct {
	Schema string
	Raw    string
	Err    error
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("response does not match schema %s: %v", e.Schema, e.Err)
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFence  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// StripThinking removes <think>...</think> reasoning blocks some models
// emit ahead of their answer. An unterminated block keeps only what
// follows the last closing tag, or nothing.
func StripThinking(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	if i := strings.Index(s, "<think>"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// ClipText returns s cut to at most n bytes, backing up to a rune boundary
// so the result stays valid UTF-8. The bool reports whether anything was
// cut.
func ClipText(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n], true
}

// ExtractJSON returns the JSON object embedded in a model reply, tolerating
// thinking blocks, code fences, and surrounding prose.
func ExtractJSON(s string) string {
	s = StripThinking(s)
	if m := codeFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}

// DecodeStructured parses raw into out and validates it. Every key listed
// in the schema's "required" array must be present and non-null; a zero
// value decoded from an absent key never passes as an answer.
func DecodeStructured(raw string, schema Schema, out any) error {
	body := ExtractJSON(raw)
	if missing, err := missingRequired(body, schema); err != nil {
		return &SchemaViolationError{Schema: schema.Name, Raw: raw, Err: fmt.Errorf("decoding JSON: %w", err)}
	} else if len(missing) > 0 {
		return &SchemaViolationError{Schema: schema.Name, Raw: raw, Err: fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))}
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return &SchemaViolationError{Schema: schema.Name, Raw: raw, Err: fmt.Errorf("decoding JSON: %w", err)}
	}
	if err := validate.Struct(out); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			// out is not a struct; nothing to validate.
			return nil
		}
		return &SchemaViolationError{Schema: schema.Name, Raw: raw, Err: err}
	}
	return nil
}

// missingRequired returns the required keys of schema that body lacks or
// sets to null, in schema order.
func missingRequired(body string, schema Schema) ([]string, error) {
	required := requiredKeys(schema.JSON["required"])
	if len(required) == 0 {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, err
	}
	var missing []string
	for _, key := range required {
		v, ok := fields[key]
		if !ok || string(v) == "null" {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

func requiredKeys(v any) []string {
	switch keys := v.(type) {
	case []string:
		return keys
	case []any:
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := k.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// schemaInstruction is appended to the system prompt for providers without
// native schema enforcement.
func schemaInstruction(s *Schema) string {
	b, _ := json.MarshalIndent(s.JSON, "", "  ")
	var sb strings.Builder
	sb.WriteString("Respond ONLY with a single JSON object")
	if s.Name != "" {
		fmt.Fprintf(&sb, " (%s)", s.Name)
	}
	sb.WriteString(" that conforms to this JSON Schema. Do not add prose or code fences.\n\n")
	sb.Write(b)
	return sb.String()
}

func systemWithSchema(system string, s *Schema) string {
	if s == nil {
		return system
	}
	if system == "" {
		return schemaInstruction(s)
	}
	return system + "\n\n" + schemaInstruction(s)
}
