package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/theapemachine/a2a-go/pkg/provider"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := provider.New("not-a-real-backend")
	assert.Error(t, err)
}

func TestNewConstructsEveryKnownProvider(t *testing.T) {
	for _, name := range []provider.Name{
		provider.NameAnthropic,
		provider.NameOpenAI,
		provider.NameOllama,
		provider.NameCohere,
		provider.NameDeepseek,
		provider.NameGoogle,
	} {
		p, err := provider.New(name)
		assert.NoError(t, err)
		assert.NotNil(t, p)
	}
}
