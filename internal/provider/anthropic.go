package provider

import (
	"encoding/json"

	"github.com/magproject/mag/internal/conversation"
)

// anthropicAdapter speaks the Anthropic Messages API: the system prompt is a
// separate top-level field, each message content is an array of typed parts,
// and authentication uses a custom header plus a version header.
type anthropicAdapter struct{}

// NewAnthropic returns the Anthropic adapter.
func NewAnthropic() Adapter { return anthropicAdapter{} }

func (anthropicAdapter) Name() string         { return NameAnthropic }
func (anthropicAdapter) DefaultModel() string { return "claude-3-haiku-20240307" }
func (anthropicAdapter) APIKeyEnvVar() string { return "ANTHROPIC_API_KEY" }

func (anthropicAdapter) FullURL(apiKey, model string) string {
	return "https://api.anthropic.com/v1/messages"
}

func (anthropicAdapter) Headers(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		"anthropic-version": "2023-06-01",
		"x-api-key":         apiKey,
	}
}

func anthropicTextContent(text string) []map[string]any {
	return []map[string]any{{"type": "text", "text": text}}
}

func (a anthropicAdapter) BuildPayload(systemPrompt, userPrompt, model string) map[string]any {
	return map[string]any{
		"model":       model,
		"max_tokens":  1000,
		"temperature": 0.1,
		"system":      systemPrompt,
		"messages": []map[string]any{
			{"role": "user", "content": anthropicTextContent(userPrompt)},
		},
	}
}

func (a anthropicAdapter) BuildConversationPayload(systemPrompt string, history []conversation.Message, model string) map[string]any {
	messages := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		messages = append(messages, map[string]any{
			"role":    string(msg.Role),
			"content": anthropicTextContent(msg.Content),
		})
	}
	return map[string]any{
		"model":       model,
		"max_tokens":  1000,
		"temperature": 0.1,
		"system":      systemPrompt,
		"messages":    messages,
	}
}

// anthropicEnvelope is the response wrapper shared by plan and chat parsing.
type anthropicEnvelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a anthropicAdapter) unwrap(raw []byte) (string, error) {
	var env anthropicEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &ParseError{Adapter: NameAnthropic, Reason: "invalid response envelope", Cause: err}
	}
	if len(env.Content) == 0 {
		return "", &ParseError{Adapter: NameAnthropic, Reason: "response has no content blocks"}
	}
	return env.Content[0].Text, nil
}

func (a anthropicAdapter) ParsePlan(raw []byte) (*PlanCommand, error) {
	text, err := a.unwrap(raw)
	if err != nil {
		return nil, err
	}
	return decodePlan(NameAnthropic, text)
}

func (a anthropicAdapter) ParseChat(raw []byte) (string, error) {
	return a.unwrap(raw)
}
