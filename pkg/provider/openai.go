package provider

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider adapts openai-go's chat completions API to Interface.
type OpenAIProvider struct{}

func (p *OpenAIProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(resolve(apiKey, os.Getenv("OPENAI_API_KEY")))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
