package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// --- Claude provider ---

type claudeProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

func newClaudeProvider(apiKey, model string, opts ...option.RequestOption) *claudeProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := anthropic.NewClient(opts...)
	return &claudeProvider{client: &client, model: anthropic.Model(model)}
}

func (c *claudeProvider) complete(ctx context.Context, req request) (string, error) {
	system := req.contract.describe()
	if req.system != "" {
		system = req.system + "\n\n" + system
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return resp.Content[0].Text, nil
}
