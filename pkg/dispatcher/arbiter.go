package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/provider"
)

// arbiterSystemPrompt instructs the LLM to answer with nothing but the
// chosen agent's name, so the reply can be parsed with a single pass.
const arbiterSystemPrompt = "You are a routing arbiter. Given a list of agents and a user request, " +
	"reply with ONLY the exact name of the single best agent to handle the request. " +
	"No punctuation, no explanation, just the name."

// Arbiter consults an LLM collaborator to pick an agent, per spec §4.8.2.
// It is optional: the runtime must tolerate an unreachable or unset LLM by
// degrading to the keyword scorer alone.
type Arbiter struct {
	Provider provider.Interface
	Model    string
	BaseURL  string
	APIKey   string
}

func NewArbiter(p provider.Interface, model string) *Arbiter {
	return &Arbiter{Provider: p, Model: model}
}

// Ask prompts the LLM with the registry's agent list and the user query and
// parses its reply into one of the candidate agent names. Returns ok=false
// if the LLM errored or its reply didn't match any candidate.
func (a *Arbiter) Ask(ctx context.Context, query string, cards []a2a.AgentCard) (name string, ok bool) {
	if a == nil || a.Provider == nil || len(cards) == 0 {
		return "", false
	}

	prompt := renderAgentList(cards, query)
	reply, err := a.Provider.Chat(ctx, arbiterSystemPrompt, prompt, a.Model, a.BaseURL, a.APIKey)
	if err != nil {
		return "", false
	}

	reply = strings.TrimSpace(strings.Trim(reply, ".\"'"))
	for _, card := range cards {
		if strings.EqualFold(card.Name, reply) {
			return card.Name, true
		}
	}
	return "", false
}

func renderAgentList(cards []a2a.AgentCard, query string) string {
	var b strings.Builder
	b.WriteString("Agents:\n")
	for _, card := range cards {
		desc := ""
		if card.Description != nil {
			desc = *card.Description
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", card.Name, desc))
	}
	b.WriteString("\nUser request: ")
	b.WriteString(query)
	return b.String()
}
