package provider

import (
	"context"
	"os"

	"github.com/cohesion-org/deepseek-go"
)

// DeepseekProvider adapts deepseek-go's chat completion API to Interface.
type DeepseekProvider struct{}

func (p *DeepseekProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	var client *deepseek.Client
	if baseURL != "" {
		client = deepseek.NewClient(resolve(apiKey, os.Getenv("DEEPSEEK_API_KEY")), baseURL)
	} else {
		client = deepseek.NewClient(resolve(apiKey, os.Getenv("DEEPSEEK_API_KEY")))
	}

	if model == "" {
		model = deepseek.DeepSeekChat
	}

	resp, err := client.CreateChatCompletion(ctx, &deepseek.ChatCompletionRequest{
		Model: model,
		Messages: []deepseek.ChatCompletionMessage{
			{Role: deepseek.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: deepseek.ChatMessageRoleUser, Content: userPrompt},
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
