package provider

import (
	"github.com/magproject/mag/internal/conversation"
)

// mistralAdapter speaks the Mistral chat completions API, which is
// wire-compatible with OpenAI's; only the endpoint and key variable differ.
type mistralAdapter struct{}

// NewMistral returns the Mistral adapter.
func NewMistral() Adapter { return mistralAdapter{} }

func (mistralAdapter) Name() string         { return NameMistral }
func (mistralAdapter) DefaultModel() string { return "mistral-small-latest" }
func (mistralAdapter) APIKeyEnvVar() string { return "MISTRAL_API_KEY" }

func (mistralAdapter) FullURL(apiKey, model string) string {
	return "https://api.mistral.ai/v1/chat/completions"
}

func (mistralAdapter) Headers(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
	}
}

func (mistralAdapter) BuildPayload(systemPrompt, userPrompt, model string) map[string]any {
	return chatCompletionsPayload(systemPrompt, nil, userPrompt, model)
}

func (mistralAdapter) BuildConversationPayload(systemPrompt string, history []conversation.Message, model string) map[string]any {
	return chatCompletionsPayload(systemPrompt, history, "", model)
}

func (mistralAdapter) ParsePlan(raw []byte) (*PlanCommand, error) {
	text, err := unwrapChatCompletions(NameMistral, raw)
	if err != nil {
		return nil, err
	}
	return decodePlan(NameMistral, text)
}

func (mistralAdapter) ParseChat(raw []byte) (string, error) {
	return unwrapChatCompletions(NameMistral, raw)
}
