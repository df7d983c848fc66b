package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// Generate implements ports.TextGenerator for ai nodes.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.SystemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(req.SystemPrompt))
	}
	params.Messages = append(params.Messages, historyMessages(req.History)...)
	if req.UserMessage != "" {
		params.Messages = append(params.Messages, openai.UserMessage(req.UserMessage))
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("generation returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
