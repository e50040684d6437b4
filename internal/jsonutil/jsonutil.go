// Package jsonutil holds small JSON helpers shared by the tool surface and
// the CLI.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Encode marshals v with indentation for agent/human consumption. Marshal
// failures degrade to a quoted error string rather than panicking.
func Encode(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"message":%q}`, "encode result: "+err.Error())
	}
	return string(b)
}

// DecodeParams parses a JSON object string into tool parameters. An empty
// input yields an empty map.
func DecodeParams(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	return params, nil
}
