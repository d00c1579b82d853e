package core

// Part represents a polymorphic segment of message content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// FilePart references a file attached to a message, either uploaded alongside
// user input or produced by the assistant (e.g. an image rendered by a run).
type FilePart struct {
	FileID   string  // Remote file identifier
	MimeType *string // Optional MIME type hint
	Name     *string // Original filename hint
	Metadata map[string]any
}

// isPart implements the Part interface for FilePart.
func (FilePart) isPart() {}
