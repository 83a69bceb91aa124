package a2a

import (
	"fmt"

	"github.com/spf13/viper"
)

// AgentCard conveys the top-level capabilities and metadata exposed by a
// remote agent that supports the A2A protocol, served at
// /.well-known/agent.json.
type AgentCard struct {
	Name               string               `json:"name"`
	Description        *string              `json:"description,omitempty"`
	URL                string               `json:"url"`
	Provider           *AgentProvider       `json:"provider,omitempty"`
	Version            string               `json:"version"`
	DocumentationURL   *string              `json:"documentationUrl,omitempty"`
	Capabilities       AgentCapabilities    `json:"capabilities"`
	Authentication     *AgentAuthentication `json:"authentication,omitempty"`
	DefaultInputModes  []string             `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string             `json:"defaultOutputModes,omitempty"`
	Skills             []AgentSkill         `json:"skills"`
}

type AgentProvider struct {
	Organization string  `json:"organization"`
	URL          *string `json:"url,omitempty"`
}

type AgentCapabilities struct {
	Streaming              bool `json:"streaming,omitempty"`
	PushNotifications      bool `json:"pushNotifications,omitempty"`
	StateTransitionHistory bool `json:"stateTransitionHistory,omitempty"`
}

type AgentAuthentication struct {
	Schemes     []string `json:"schemes"`
	Credentials *string  `json:"credentials,omitempty"`
}

type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	InputModes  []string `json:"inputModes,omitempty"`
	OutputModes []string `json:"outputModes,omitempty"`
}

// NewAgentCardFromConfig builds a card from the viper config tree rooted at
// agent.<key>.*, following the teacher's config-driven card construction
// pattern. agent.<key>.skills lists skill ids; each skill's fields are read
// from skills.<id>.*.
func NewAgentCardFromConfig(key string) AgentCard {
	v := viper.GetViper()
	prefix := fmt.Sprintf("agent.%s.", key)

	card := AgentCard{
		Name:    v.GetString(prefix + "name"),
		URL:     v.GetString(prefix + "url"),
		Version: v.GetString(prefix + "version"),
		Capabilities: AgentCapabilities{
			Streaming:              v.GetBool(prefix + "capabilities.streaming"),
			PushNotifications:      v.GetBool(prefix + "capabilities.pushNotifications"),
			StateTransitionHistory: v.GetBool(prefix + "capabilities.stateTransitionHistory"),
		},
		DefaultInputModes:  v.GetStringSlice(prefix + "defaultInputModes"),
		DefaultOutputModes: v.GetStringSlice(prefix + "defaultOutputModes"),
	}

	if org := v.GetString(prefix + "provider.organization"); org != "" {
		u := v.GetString(prefix + "provider.url")
		card.Provider = &AgentProvider{Organization: org, URL: &u}
	}

	skillKeys := v.GetStringSlice(prefix + "skills")
	for _, sk := range skillKeys {
		card.Skills = append(card.Skills, newSkillFromConfig(sk))
	}

	return card
}

func newSkillFromConfig(key string) AgentSkill {
	v := viper.GetViper()
	prefix := fmt.Sprintf("skills.%s.", key)

	return AgentSkill{
		ID:          key,
		Name:        v.GetString(prefix + "name"),
		Tags:        v.GetStringSlice(prefix + "tags"),
		Examples:    v.GetStringSlice(prefix + "examples"),
		InputModes:  v.GetStringSlice(prefix + "inputModes"),
		OutputModes: v.GetStringSlice(prefix + "outputModes"),
	}
}
