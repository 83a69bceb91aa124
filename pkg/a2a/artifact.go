package a2a

import "github.com/google/uuid"

// Artifact is a unit of output produced by an executor during a task; it may
// be emitted in chunks sharing the same ArtifactID, assembled by the task
// store in arrival order until LastChunk=true.
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Index       int            `json:"index"`
	Append      *bool          `json:"append,omitempty"`
	LastChunk   *bool          `json:"lastChunk,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewTextArtifact(text string) Artifact {
	return Artifact{
		ArtifactID: uuid.NewString(),
		Parts:      []Part{NewTextPart(text)},
	}
}

// IsChunkStart reports whether this artifact event opens a chunked sequence
// (append=false and not the last chunk).
func (a Artifact) IsChunkStart() bool {
	return a.Append != nil && !*a.Append && (a.LastChunk == nil || !*a.LastChunk)
}

func (a Artifact) IsAppend() bool {
	return a.Append != nil && *a.Append
}

func (a Artifact) IsLastChunk() bool {
	return a.LastChunk != nil && *a.LastChunk
}
