// Package openai provides a NameVariator implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
	"github.com/fundtrack/fundtrack-core/internal/infrastructure/config"
)

const variationPrompt = `You are a hedge fund expert with in-depth knowledge of institutional investment firms.
You will be given the name of a hedge fund. Produce 10 name variations that could be used to
search the SEC EDGAR database for the firm's CIK: abbreviations, legal-suffix variants
(LLC, L.P., LP, omitted), punctuation variants. If you know the exact name under which the
firm appears in EDGAR, put that spelling first. Case does not matter; names are normalized
before searching.

Return ONLY a valid JSON object, no other text:
{"name": "<the input name>", "name_variations": ["...", 10 strings exactly]}`

// Client implements the ports.NameVariator interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI name-variation client.
func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

// Variations asks the model for alternate renderings of name. A malformed
// response or one without exactly entities.VariantCount variations is an
// error; the caller drops that fund and continues its batch.
func (c *Client) Variations(ctx context.Context, name string) (*entities.NameVariants, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: variationPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: name,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return parseVariants(name, resp.Choices[0].Message.Content)
}

// parseVariants validates the model output against the contract: a JSON
// object carrying exactly VariantCount non-empty variations. The original
// input name is preserved regardless of what the model echoed back.
func parseVariants(name, content string) (*entities.NameVariants, error) {
	content = cleanJSONResponse(content)

	var v entities.NameVariants
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("parsing variations JSON: %w (response: %s)", err, content)
	}

	if len(v.Variations) != entities.VariantCount {
		return nil, fmt.Errorf("expected %d name variations, got %d", entities.VariantCount, len(v.Variations))
	}
	for _, variation := range v.Variations {
		if strings.TrimSpace(variation) == "" {
			return nil, errors.New("empty name variation in response")
		}
	}

	v.Name = name
	return &v, nil
}

// cleanJSONResponse removes markdown code fences the model sometimes wraps
// around JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
