package a2a

import "fmt"

// PartType discriminates the Part sum type.
type PartType string

const (
	PartTypeText PartType = "text"
	PartTypeFile PartType = "file"
	PartTypeData PartType = "data"
)

// Part is a discriminated union over text, file and data content. Exactly
// one of Text/File/Data is populated depending on Type.
type Part struct {
	Type PartType `json:"type"`

	Text string    `json:"text,omitempty"`
	File *FilePart `json:"file,omitempty"`
	Data any       `json:"data,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// FilePart carries either inline base64 bytes or a URI, never both.
type FilePart struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Bytes    string  `json:"bytes,omitempty"` // base64-encoded
	URI      string  `json:"uri,omitempty"`
}

// Validate rejects the decoder-level boundary violations spec §4.1 names:
// a file part carrying both bytes and uri, or neither.
func (p Part) Validate() error {
	switch p.Type {
	case PartTypeText:
		return nil
	case PartTypeFile:
		if p.File == nil {
			return fmt.Errorf("file part missing file payload")
		}
		if p.File.Bytes != "" && p.File.URI != "" {
			return fmt.Errorf("file part carries both bytes and uri")
		}
		if p.File.Bytes == "" && p.File.URI == "" {
			return fmt.Errorf("file part carries neither bytes nor uri")
		}
		return nil
	case PartTypeData:
		if p.Data == nil {
			return fmt.Errorf("data part missing data payload")
		}
		return nil
	default:
		return fmt.Errorf("unknown part type %q", p.Type)
	}
}

func NewTextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

func NewDataPart(data any) Part {
	return Part{Type: PartTypeData, Data: data}
}

func NewFilePart(name, mimeType string, bytesB64 string) Part {
	return Part{
		Type: PartTypeFile,
		File: &FilePart{Name: &name, MimeType: &mimeType, Bytes: bytesB64},
	}
}
