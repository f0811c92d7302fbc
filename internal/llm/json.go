package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```[a-zA-Z0-9_-]*[ \\t]*\\n?(.*?)\\n?\\s*```\\s*$")

// StripFences removes a markdown code fence wrapped around the whole reply
func StripFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// DecodeJSON decodes the first JSON object in raw into out. Fences and
// prose around the object are tolerated; anything else is a *ParseError.
func DecodeJSON(raw string, out any) error {
	text := StripFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return &ParseError{Raw: raw, Err: errors.New("no JSON object in response")}
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}
