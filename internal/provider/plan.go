package provider

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decodePlan parses the text a model returned in plan mode into a
// PlanCommand. The text must be a JSON object with at least a "command"
// field; unknown fields are ignored.
func decodePlan(adapterName, text string) (*PlanCommand, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &ParseError{Adapter: adapterName, Reason: "plan is not valid JSON", Cause: err}
	}

	var cmd PlanCommand
	if err := mapstructure.Decode(fields, &cmd); err != nil {
		return nil, &ParseError{Adapter: adapterName, Reason: "plan fields have wrong types", Cause: err}
	}

	if cmd.Command == "" {
		return nil, &ParseError{Adapter: adapterName, Reason: "plan is missing the command field"}
	}
	return &cmd, nil
}

// stripCodeFence removes a leading triple-backtick fence (bare or tagged
// "json") and its closing fence. Some models wrap JSON plans in
// markdown fences despite instructions not to.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	rest := strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		tag := strings.TrimSpace(rest[:newline])
		// Only a bare fence line or one tagged "json" is stripped; any other
		// fence line leaves the text unchanged.
		if tag == "" || tag == "json" {
			rest = rest[newline+1:]
		} else {
			return text
		}
	} else {
		return text
	}

	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}
