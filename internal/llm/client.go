// Package llm wraps the completion provider behind the three narrow
// operations the engine needs: classification, structured extraction,
// and reply generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"proppanda_backend/platform/config"
	"proppanda_backend/platform/logger"
)

// Client is a completion client bound to a single model.
type Client struct {
	api   openai.Client
	model string
	log   *logger.Logger
}

// NewClient creates a completion client from configuration. A custom base
// URL points the client at an OpenAI-compatible endpoint.
func NewClient(cfg config.LLMConfig, log *logger.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.GetLLMAPIKey()),
	}
	if cfg.GetLLMBaseURL() != "" {
		opts = append(opts, option.WithBaseURL(cfg.GetLLMBaseURL()))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: cfg.GetLLMModel(),
		log:   log,
	}
}

// Complete runs a single system+user exchange and returns the text reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0.3),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.CollaboratorError("llm", "complete", err)
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteJSON runs a completion in JSON mode and decodes the reply into out.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, out any) error {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Temperature: openai.Float(0),
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.CollaboratorError("llm", "complete_json", err)
		return fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("completion returned no choices")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion json: %w", err)
	}
	return nil
}

// stripCodeFence removes a markdown code fence if the model wrapped its JSON
// in one despite JSON mode. Seen with compatible endpoints.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
