package provider

import (
	"context"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider adapts anthropic-sdk-go's Messages API to Interface.
type AnthropicProvider struct{}

func (p *AnthropicProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(resolve(apiKey, os.Getenv("ANTHROPIC_API_KEY")))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	return out.String(), nil
}

func resolve(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
