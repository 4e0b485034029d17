package provider

import (
	"encoding/json"

	"github.com/magproject/mag/internal/conversation"
)

// openAIAdapter speaks the OpenAI chat completions API: a flat messages
// array with the system role first and bearer authentication.
type openAIAdapter struct{}

// NewOpenAI returns the OpenAI adapter.
func NewOpenAI() Adapter { return openAIAdapter{} }

func (openAIAdapter) Name() string         { return NameOpenAI }
func (openAIAdapter) DefaultModel() string { return "gpt-3.5-turbo" }
func (openAIAdapter) APIKeyEnvVar() string { return "OPENAI_API_KEY" }

func (openAIAdapter) FullURL(apiKey, model string) string {
	return "https://api.openai.com/v1/chat/completions"
}

func (openAIAdapter) Headers(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
	}
}

// chatCompletionsPayload builds the OpenAI-shaped body shared with Mistral.
func chatCompletionsPayload(systemPrompt string, history []conversation.Message, userPrompt, model string) map[string]any {
	messages := []map[string]any{
		{"role": "system", "content": systemPrompt},
	}
	for _, msg := range history {
		messages = append(messages, map[string]any{
			"role":    string(msg.Role),
			"content": msg.Content,
		})
	}
	if userPrompt != "" {
		messages = append(messages, map[string]any{"role": "user", "content": userPrompt})
	}
	return map[string]any{
		"model":       model,
		"messages":    messages,
		"max_tokens":  1000,
		"temperature": 0.1,
	}
}

func (openAIAdapter) BuildPayload(systemPrompt, userPrompt, model string) map[string]any {
	return chatCompletionsPayload(systemPrompt, nil, userPrompt, model)
}

func (openAIAdapter) BuildConversationPayload(systemPrompt string, history []conversation.Message, model string) map[string]any {
	return chatCompletionsPayload(systemPrompt, history, "", model)
}

// chatCompletionsEnvelope is the response wrapper shared with Mistral.
type chatCompletionsEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func unwrapChatCompletions(adapterName string, raw []byte) (string, error) {
	var env chatCompletionsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &ParseError{Adapter: adapterName, Reason: "invalid response envelope", Cause: err}
	}
	if len(env.Choices) == 0 {
		return "", &ParseError{Adapter: adapterName, Reason: "response has no choices"}
	}
	return env.Choices[0].Message.Content, nil
}

func (openAIAdapter) ParsePlan(raw []byte) (*PlanCommand, error) {
	text, err := unwrapChatCompletions(NameOpenAI, raw)
	if err != nil {
		return nil, err
	}
	return decodePlan(NameOpenAI, text)
}

func (openAIAdapter) ParseChat(raw []byte) (string, error) {
	return unwrapChatCompletions(NameOpenAI, raw)
}
