package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// --- OpenAI provider ---

type openaiProvider struct {
	client *openai.Client
	model  openai.ChatModel
}

func newOpenAIProvider(apiKey, model string, opts ...option.RequestOption) *openaiProvider {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	return &openaiProvider{client: &client, model: openai.ChatModel(model)}
}

func (o *openaiProvider) complete(ctx context.Context, req request) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	system := req.contract.describe()
	if req.system != "" {
		system = req.system + "\n\n" + system
	}
	messages = append(messages, openai.SystemMessage(system), openai.UserMessage(req.user))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
