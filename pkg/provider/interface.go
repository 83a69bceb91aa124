// Package provider adapts several third-party LLM SDKs behind one narrow
// interface: a single non-streaming chat completion, which is all the host
// dispatcher's LLM arbiter and an LLM-backed executor need.
package provider

import "context"

// Interface is the collaborator contract used by both the LLM arbiter
// (host dispatcher) and any agent executor that delegates generation to a
// model backend.
type Interface interface {
	// Chat sends a single system/user prompt pair to model and returns the
	// model's full text response. baseURL overrides the SDK's default
	// endpoint when non-empty (used for self-hosted or proxy deployments);
	// apiKey overrides the SDK's default credential source when non-empty.
	Chat(ctx context.Context, systemPrompt, userPrompt, model, baseURL, apiKey string) (string, error)
}

// Name identifies which adapter to construct, matching the --llm-provider
// CLI flag values.
type Name string

const (
	NameAnthropic Name = "anthropic"
	NameOpenAI    Name = "openai"
	NameOllama    Name = "ollama"
	NameCohere    Name = "cohere"
	NameDeepseek  Name = "deepseek"
	NameGoogle    Name = "google"
)

// New constructs the adapter named by name.
func New(name Name) (Interface, error) {
	switch name {
	case NameAnthropic:
		return &AnthropicProvider{}, nil
	case NameOpenAI:
		return &OpenAIProvider{}, nil
	case NameOllama:
		return &OllamaProvider{}, nil
	case NameCohere:
		return &CohereProvider{}, nil
	case NameDeepseek:
		return &DeepseekProvider{}, nil
	case NameGoogle:
		return &GoogleProvider{}, nil
	default:
		return nil, &UnknownProviderError{Name: string(name)}
	}
}

type UnknownProviderError struct{ Name string }

func (e *UnknownProviderError) Error() string {
	return "provider: unknown backend " + e.Name
}
