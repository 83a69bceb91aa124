package dispatcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/dispatcher"
)

func strPtr(s string) *string { return &s }

func currencyCard() a2a.AgentCard {
	return a2a.AgentCard{
		Name: "currency-agent",
		Skills: []a2a.AgentSkill{{
			ID:          "convert",
			Name:        "convert",
			Description: strPtr("converts between currencies"),
			Tags:        []string{"currency", "usd", "eur", "exchange"},
			Examples:    []string{"convert 100 usd to eur"},
		}},
	}
}

func elementsCard() a2a.AgentCard {
	return a2a.AgentCard{
		Name: "elements-agent",
		Skills: []a2a.AgentSkill{{
			ID:          "lookup",
			Name:        "lookup",
			Description: strPtr("looks up chemical elements"),
			Tags:        []string{"element", "chemistry", "atomic"},
			Examples:    []string{"what is the atomic number of gold"},
		}},
	}
}

func TestScorerPicksDisjointSkillAgent(t *testing.T) {
	scorer := dispatcher.NewScorer([]a2a.AgentCard{currencyCard(), elementsCard()})

	name, confidence := scorer.Score("convert 100 USD to EUR")
	assert.Equal(t, "currency-agent", name)
	assert.Greater(t, confidence, 0.5)
}

func TestScorerReturnsNoPickWhenNoLexiconMatches(t *testing.T) {
	scorer := dispatcher.NewScorer([]a2a.AgentCard{currencyCard(), elementsCard()})

	name, confidence := scorer.Score("zzqq wwrr plonk")
	assert.Equal(t, "", name)
	assert.Equal(t, 0.5, confidence)
}

func TestPolicySelectDegradesToScorerWithoutArbiter(t *testing.T) {
	policy := dispatcher.NewPolicy(nil, time.Minute)

	name, _, ok := policy.Select(context.Background(), "convert 100 USD to EUR", []a2a.AgentCard{currencyCard(), elementsCard()})
	require.True(t, ok)
	assert.Equal(t, "currency-agent", name)
}

func TestPolicySelectReturnsNotOKForEmptyRegistry(t *testing.T) {
	policy := dispatcher.NewPolicy(nil, time.Minute)

	_, _, ok := policy.Select(context.Background(), "anything", nil)
	assert.False(t, ok)
}
