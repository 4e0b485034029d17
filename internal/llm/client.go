// Package llm owns the model client: it composes policy-aware system
// instructions, picks the provider adapter, issues chat and plan calls over
// HTTP, and parses the results.
package llm

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/magproject/mag/internal/conversation"
	"github.com/magproject/mag/internal/policy"
	"github.com/magproject/mag/internal/provider"
)

// httpDoer is the slice of http.Client the client depends on.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client binds one adapter and one model name. All calls are synchronous
// with respect to the caller.
type Client struct {
	adapter provider.Adapter
	apiKey  string
	model   string
	policy  *policy.Engine
	http    httpDoer
}

// NewClient creates a Client for the given adapter. The API key is read from
// the adapter's environment variable; a missing key is a configuration
// error.
func NewClient(adapter provider.Adapter, engine *policy.Engine) (*Client, error) {
	return NewClientWithDoer(adapter, engine, &http.Client{Timeout: 60 * time.Second})
}

// NewClientWithDoer is NewClient with an injected HTTP transport.
func NewClientWithDoer(adapter provider.Adapter, engine *policy.Engine, doer httpDoer) (*Client, error) {
	apiKey, err := provider.APIKey(adapter)
	if err != nil {
		return nil, err
	}
	return &Client{
		adapter: adapter,
		apiKey:  apiKey,
		model:   adapter.DefaultModel(),
		policy:  engine,
		http:    doer,
	}, nil
}

// Provider returns the internal name of the current adapter.
func (c *Client) Provider() string { return c.adapter.Name() }

// Model returns the current model name.
func (c *Client) Model() string { return c.model }

// SetProvider switches the client to a different adapter mid-session. The
// model defaults to the new adapter's default when empty. Conversation
// history is owned by the caller and unaffected.
func (c *Client) SetProvider(name, model string) error {
	adapter, err := provider.New(name)
	if err != nil {
		return err
	}
	apiKey, err := provider.APIKey(adapter)
	if err != nil {
		return err
	}
	if model == "" {
		model = adapter.DefaultModel()
	}
	c.adapter = adapter
	c.apiKey = apiKey
	c.model = model
	return nil
}

// Plan asks the model to translate userText into a structured operation.
func (c *Client) Plan(userText string) (*provider.PlanCommand, error) {
	payload := c.adapter.BuildPayload(PlanSystemPrompt(c.policy), userText, c.model)
	raw, err := c.post(payload)
	if err != nil {
		return nil, err
	}
	return c.adapter.ParsePlan(raw)
}

// Chat sends a single conversational turn.
func (c *Client) Chat(userText string) (string, error) {
	payload := c.adapter.BuildPayload(ChatSystemPrompt(c.policy), userText, c.model)
	raw, err := c.post(payload)
	if err != nil {
		return "", err
	}
	return c.adapter.ParseChat(raw)
}

// ChatWithHistory sends the full conversation so the model sees prior turns.
func (c *Client) ChatWithHistory(history []conversation.Message) (string, error) {
	payload := c.adapter.BuildConversationPayload(ChatSystemPrompt(c.policy), history, c.model)
	raw, err := c.post(payload)
	if err != nil {
		return "", err
	}
	return c.adapter.ParseChat(raw)
}

func (c *Client) post(payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &provider.TransportError{Adapter: c.adapter.Name(), Cause: err}
	}

	req, err := http.NewRequest(http.MethodPost, c.adapter.FullURL(c.apiKey, c.model), bytes.NewReader(body))
	if err != nil {
		return nil, &provider.TransportError{Adapter: c.adapter.Name(), Cause: err}
	}
	for k, v := range c.adapter.Headers(c.apiKey) {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &provider.TransportError{Adapter: c.adapter.Name(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := readAll(resp.Body)
	if err != nil {
		return nil, &provider.TransportError{Adapter: c.adapter.Name(), Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.TransportError{Adapter: c.adapter.Name(), StatusCode: resp.StatusCode}
	}
	return raw, nil
}
