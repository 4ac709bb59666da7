package pipeline

import (
	"encoding/json"
	"strings"
)

// decodeModelJSON unmarshals a model completion into dst. Models routinely
// wrap their JSON in Markdown code fences; those are stripped first. Any
// remaining decode failure becomes a ParseError for the given stage.
func decodeModelJSON(stage Stage, raw string, dst any) error {
	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return &ParseError{Stage: stage, Raw: raw, Err: err}
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	// the opening fence may carry a language tag, ex: ```json
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "JSON" {
			s = s[idx+1:]
		}
	}
	return strings.TrimSpace(s)
}
