package provider

import (
	"context"

	"google.golang.org/genai"
)

// GoogleProvider adapts google.golang.org/genai's GenerateContent API to
// Interface. Gemini has no system role in the content list, so systemPrompt
// is passed via GenerateContentConfig.SystemInstruction.
type GoogleProvider struct{}

func (p *GoogleProvider) Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error) {
	cc := &genai.ClientConfig{}
	if apiKey != "" {
		cc.APIKey = apiKey
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = "gemini-1.5-flash"
	}

	resp, err := client.Models.GenerateContent(
		ctx,
		model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: userPrompt}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		},
	)
	if err != nil {
		return "", err
	}

	return resp.Text(), nil
}
