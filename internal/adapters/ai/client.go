package ai

import (
	"context"
	"fmt"
	"time"

	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/domain"

	openai "github.com/sashabaranov/go-openai"
)

// Turn is a minimal chat message exchanged with the generative model.
// Role must be one of: "system", "user", or "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the methods required by the report synthesizer and
// the conversational assistant.
type Client interface {
	// Generate sends the turn history to the model and returns the raw
	// assistant text. When jsonMode is set the model is constrained to
	// emit a single JSON object at low temperature.
	Generate(ctx context.Context, turns []Turn, jsonMode bool) (string, error)
}

// openAIClient calls an OpenAI-compatible endpoint.
type openAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient constructs a model client from configuration. BaseURL may
// point at any OpenAI-compatible gateway.
func NewClient(cfg config.AIConfig) Client {
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &openAIClient{
		client:  openai.NewClientWithConfig(oaCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// Generate implements Client. Every failure of the upstream model is
// collapsed into domain.ErrModelUnavailable so callers can run their
// fallback path without inspecting transport details.
func (c *openAIClient) Generate(ctx context.Context, turns []Turn, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: 1.0,
	}
	if jsonMode {
		req.Temperature = 0.3
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrModelUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
