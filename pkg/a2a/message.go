package a2a

import (
	"fmt"

	"github.com/google/uuid"
)

// Message represents all non-artifact communication between client and
// agent. Parts are ordered and immutable once sent.
type Message struct {
	Role      string         `json:"role"` // "user" or "agent"
	Parts     []Part         `json:"parts"`
	MessageID string         `json:"messageId"`
	TaskID    *string        `json:"taskId,omitempty"`
	ContextID *string        `json:"contextId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate enforces the decoder-boundary invariant that a message must
// carry at least one part, and that every part is individually valid.
func (m Message) Validate() error {
	if len(m.Parts) == 0 {
		return fmt.Errorf("message has zero parts")
	}
	for i, p := range m.Parts {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
	}
	return nil
}

func NewTextMessage(role, text string) Message {
	return Message{
		Role:      role,
		Parts:     []Part{NewTextPart(text)},
		MessageID: uuid.NewString(),
	}
}

func NewDataMessage(role string, data any) Message {
	return Message{
		Role:      role,
		Parts:     []Part{NewDataPart(data)},
		MessageID: uuid.NewString(),
	}
}

// String concatenates the text of every text part, for logging/debugging.
func (m Message) String() string {
	out := ""
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			out += p.Text
		}
	}
	return out
}
