package provider

import (
	"encoding/json"

	"github.com/magproject/mag/internal/conversation"
)

// geminiAdapter speaks the Gemini generateContent API: a contents array of
// turns with per-turn parts, the assistant role spelled "model", and the API
// key passed as a URL query parameter. Conversation payloads carry the system
// prompt in a separate systemInstruction field; single-turn payloads prepend
// it to the user text ("<system>\n\nUser: <user>").
type geminiAdapter struct{}

// NewGemini returns the Gemini adapter.
func NewGemini() Adapter { return geminiAdapter{} }

func (geminiAdapter) Name() string         { return NameGemini }
func (geminiAdapter) DefaultModel() string { return "gemini-2.0-flash" }
func (geminiAdapter) APIKeyEnvVar() string { return "GEMINI_API_KEY" }

func (g geminiAdapter) FullURL(apiKey, model string) string {
	if model == "" {
		model = g.DefaultModel()
	}
	return "https://generativelanguage.googleapis.com/v1beta/models/" + model + ":generateContent?key=" + apiKey
}

func (geminiAdapter) Headers(apiKey string) map[string]string {
	// The key travels in the URL; only the content type is needed.
	return map[string]string{"Content-Type": "application/json"}
}

func geminiParts(text string) []map[string]any {
	return []map[string]any{{"text": text}}
}

func geminiRole(role conversation.Role) string {
	if role == conversation.RoleAssistant {
		return "model"
	}
	return string(role)
}

func (geminiAdapter) BuildPayload(systemPrompt, userPrompt, model string) map[string]any {
	combined := systemPrompt + "\n\nUser: " + userPrompt
	return map[string]any{
		"contents": []map[string]any{
			{"parts": geminiParts(combined)},
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"maxOutputTokens": 1000,
		},
	}
}

func (geminiAdapter) BuildConversationPayload(systemPrompt string, history []conversation.Message, model string) map[string]any {
	contents := make([]map[string]any, 0, len(history))
	for _, msg := range history {
		contents = append(contents, map[string]any{
			"parts": geminiParts(msg.Content),
			"role":  geminiRole(msg.Role),
		})
	}
	return map[string]any{
		"contents": contents,
		"systemInstruction": map[string]any{
			"parts": geminiParts(systemPrompt),
			"role":  "user",
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"maxOutputTokens": 1000,
		},
	}
}

// geminiEnvelope is the generateContent response wrapper.
type geminiEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g geminiAdapter) unwrap(raw []byte) (string, error) {
	var env geminiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &ParseError{Adapter: NameGemini, Reason: "invalid response envelope", Cause: err}
	}
	if len(env.Candidates) == 0 || len(env.Candidates[0].Content.Parts) == 0 {
		return "", &ParseError{Adapter: NameGemini, Reason: "response has no candidate parts"}
	}
	return env.Candidates[0].Content.Parts[0].Text, nil
}

func (g geminiAdapter) ParsePlan(raw []byte) (*PlanCommand, error) {
	text, err := g.unwrap(raw)
	if err != nil {
		return nil, err
	}
	// Gemini tends to wrap JSON plans in markdown fences.
	return decodePlan(NameGemini, stripCodeFence(text))
}

func (g geminiAdapter) ParseChat(raw []byte) (string, error) {
	return g.unwrap(raw)
}
