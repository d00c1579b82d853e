package testutil

import (
	"time"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().ID("m1").Assistant().Run("r1").Text("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	id        string
	threadID  string
	role      core.Role
	runID     string
	createdAt time.Time
	delivery  core.Delivery
	parts     []core.Part
}

// NewMessageBuilder creates a builder with default role "user".
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{role: core.RoleUser, createdAt: time.Now().UTC()}
}

// ID overrides the auto-generated message ID (chainable). Use where
// determinism matters.
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Thread sets the thread id (chainable).
func (b *MessageBuilder) Thread(id string) *MessageBuilder { b.threadID = id; return b }

// Run sets the producing run id (chainable).
func (b *MessageBuilder) Run(id string) *MessageBuilder { b.runID = id; return b }

// User sets the role to user (chainable).
func (b *MessageBuilder) User() *MessageBuilder { b.role = core.RoleUser; return b }

// Assistant sets the role to assistant (chainable).
func (b *MessageBuilder) Assistant() *MessageBuilder { b.role = core.RoleAssistant; return b }

// CreatedAt sets the creation timestamp (chainable).
func (b *MessageBuilder) CreatedAt(t time.Time) *MessageBuilder { b.createdAt = t; return b }

// Delivery sets the delivery state (chainable).
func (b *MessageBuilder) Delivery(d core.Delivery) *MessageBuilder { b.delivery = d; return b }

// Text appends a text part (chainable).
func (b *MessageBuilder) Text(t string) *MessageBuilder {
	b.parts = append(b.parts, core.TextPart{Text: t})
	return b
}

// File appends a file part (chainable).
func (b *MessageBuilder) File(fileID string) *MessageBuilder {
	b.parts = append(b.parts, core.FilePart{FileID: fileID})
	return b
}

// Build assembles the message applying defaults for unset fields.
func (b *MessageBuilder) Build() core.Message {
	id := b.id
	if id == "" {
		id = core.NewID()
	}
	delivery := b.delivery
	if delivery == "" {
		delivery = core.DeliveryConfirmed
	}
	return core.Message{
		ID:        id,
		ThreadID:  b.threadID,
		Role:      b.role,
		RunID:     b.runID,
		CreatedAt: b.createdAt,
		Delivery:  delivery,
		Content:   b.parts,
	}
}
