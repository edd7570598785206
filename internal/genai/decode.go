// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON reports a model reply with no recognizable JSON payload.
var ErrNoJSON = errors.New("model reply contains no JSON payload")

const jsonFence = "```json"

// ExtractJSON locates the JSON payload inside a free-text model reply.
// Tier order matters and is relied on by both consumers:
//
//  1. A ```json fenced block, if present, is authoritative: the payload is
//     the text between the fence marker and the next ``` marker. A fence
//     with no closing marker yields no payload — the brace scan below is
//     deliberately not attempted for fenced replies.
//  2. Otherwise the substring from the first '{' through the last '}'.
//
// The boolean reports whether a candidate payload was found; the payload is
// not guaranteed to be valid JSON.
func ExtractJSON(raw string) (string, bool) {
	if i := strings.Index(raw, jsonFence); i >= 0 {
		rest := raw[i+len(jsonFence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			return "", false
		}
		return strings.TrimSpace(rest[:end]), true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}

// DecodeJSON extracts the JSON payload from a model reply and unmarshals it
// into v. Callers treat any error as "reply unusable" and apply their
// deterministic fallback.
func DecodeJSON(raw string, v any) error {
	payload, ok := ExtractJSON(raw)
	if !ok {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("parsing model JSON: %w", err)
	}
	return nil
}
