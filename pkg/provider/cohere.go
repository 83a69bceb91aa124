package provider

import (
	"context"
	"os"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
)

// CohereProvider adapts cohere-go/v2's Chat API to Interface. Cohere has no
// separate system-role message, so systemPrompt is prepended as a preamble.
type CohereProvider struct{}

func (p *CohereProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	opts := []option.RequestOption{option.WithToken(resolve(apiKey, os.Getenv("COHERE_API_KEY")))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := cohereclient.NewClient(opts...)

	var modelPtr *string
	if model != "" {
		modelPtr = &model
	}

	resp, err := client.Chat(ctx, &cohere.ChatRequest{
		Model:    modelPtr,
		Preamble: &systemPrompt,
		Message:  userPrompt,
	})
	if err != nil {
		return "", err
	}
	return resp.GetText(), nil
}
