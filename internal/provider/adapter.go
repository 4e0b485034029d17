// Package provider holds one adapter per model vendor. Each adapter is an
// immutable value implementing the full capability set: URL construction,
// authentication headers, payload building, and response extraction. The
// adapter is the only place a vendor's wire shape is known.
package provider

import (
	"github.com/magproject/mag/internal/conversation"
)

// Internal adapter names.
const (
	NameAnthropic = "anthropic"
	NameOpenAI    = "openai"
	NameGemini    = "gemini"
	NameMistral   = "mistral"
)

// Adapter is the uniform provider contract.
type Adapter interface {
	// Name returns the internal adapter name.
	Name() string
	// DefaultModel returns the model used when none is configured.
	DefaultModel() string
	// APIKeyEnvVar returns the environment variable holding the key.
	APIKeyEnvVar() string
	// FullURL returns the request URL for the given key and model.
	FullURL(apiKey, model string) string
	// BuildPayload builds a single-turn request body.
	BuildPayload(systemPrompt, userPrompt, model string) map[string]any
	// BuildConversationPayload builds a request body carrying the full
	// conversation history.
	BuildConversationPayload(systemPrompt string, history []conversation.Message, model string) map[string]any
	// Headers returns the request headers for the given key.
	Headers(apiKey string) map[string]string
	// ParsePlan unwraps the vendor envelope and decodes the contained plan.
	ParsePlan(raw []byte) (*PlanCommand, error)
	// ParseChat unwraps the vendor envelope and returns the raw reply text.
	ParseChat(raw []byte) (string, error)
}

// Plan command kinds the model may return.
const (
	CommandWriteFile = "WriteFile"
	CommandBash      = "BashCommand"
)

// PlanCommand is the structured operation returned by a model in plan mode.
// WriteFile plans carry Path and Content; BashCommand plans carry
// BashCommand (the exact shell command) and a human Description.
type PlanCommand struct {
	Command          string `json:"command" mapstructure:"command"`
	Path             string `json:"path,omitempty" mapstructure:"path"`
	Content          string `json:"content,omitempty" mapstructure:"content"`
	BashCommand      string `json:"bash_command,omitempty" mapstructure:"bash_command"`
	Description      string `json:"description,omitempty" mapstructure:"description"`
	RequestExecution bool   `json:"request_execution,omitempty" mapstructure:"request_execution"`
}

// IsWriteFile reports whether the plan is a file write.
func (p *PlanCommand) IsWriteFile() bool { return p.Command == CommandWriteFile }

// IsBashCommand reports whether the plan is a shell command.
func (p *PlanCommand) IsBashCommand() bool { return p.Command == CommandBash }

// Summary renders the plan as a one-line human description. This is the only
// conversion between the two variants: a command plan reduces to its
// description.
func (p *PlanCommand) Summary() string {
	if p.IsBashCommand() {
		if p.Description != "" {
			return p.Description
		}
		return p.BashCommand
	}
	return p.Command + " " + p.Path
}
