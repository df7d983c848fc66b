// Package openai implements the goal judgment and text generation
// collaborators over the OpenAI chat completions API.
package openai

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// DefaultModel is used unless overridden.
const DefaultModel = "gpt-4o-mini"

// Client bundles the chat completion client with the model selection. It
// implements both ports.GoalJudge and ports.TextGenerator.
type Client struct {
	api   openai.Client
	model string
}

// Option configures the Client.
type Option func(*Client)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a client authenticated with apiKey. baseURL is optional and
// supports OpenAI-compatible gateways.
func New(apiKey, baseURL string, opts ...Option) *Client {
	var reqOpts []option.RequestOption
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	c := &Client{
		api:   openai.NewClient(reqOpts...),
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// historyMessages converts session history entries to chat messages, contact
// turns as user messages and bot turns as assistant messages.
func historyMessages(history []domain.HistoryEntry) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, h := range history {
		if h.Role == domain.RoleBot {
			msgs = append(msgs, openai.AssistantMessage(h.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	return msgs
}
