package provider

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaProvider adapts the ollama/api client (Chat, non-streaming) to
// Interface.
type OllamaProvider struct{}

func (p *OllamaProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	client, err := ollamaClient(baseURL)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = "llama3.2"
	}

	stream := false
	var out string
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: &stream,
	}

	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func ollamaClient(baseURL string) (*api.Client, error) {
	if baseURL == "" {
		return api.ClientFromEnvironment()
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return api.NewClient(u, http.DefaultClient), nil
}
