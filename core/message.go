package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks messages authored by the local user.
	RoleUser Role = "user"
	// RoleAssistant marks messages produced by the remote assistant.
	RoleAssistant Role = "assistant"
)

// Delivery tracks the local submission state of an optimistically appended
// user message. Messages received from the remote API are always
// DeliveryConfirmed.
type Delivery string

const (
	// DeliveryPending means the message is visible locally but has not yet
	// been acknowledged by the remote API.
	DeliveryPending Delivery = "pending"
	// DeliveryConfirmed means the remote API accepted the message (or the
	// message originated remotely).
	DeliveryConfirmed Delivery = "confirmed"
	// DeliveryFailed means submission failed; the message stays in history so
	// the input is never silently dropped.
	DeliveryFailed Delivery = "failed"
)

// Message is a single entry of conversation history. After creation it should
// be treated as immutable; only the Delivery field is updated by the owning
// session as submission progresses.
//
// Messages are unique by ID within a session's history. Assistant messages
// carry the RunID of the run that produced them.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	RunID     string    `json:"run_id,omitempty"`
	Delivery  Delivery  `json:"delivery,omitempty"`
	Content   []Part    `json:"content"`
}

// NewUserMessage creates a locally authored user message with a single text
// part, marked DeliveryPending until the transport confirms submission.
func NewUserMessage(text string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
		Delivery:  DeliveryPending,
		Content:   []Part{TextPart{Text: text}},
	}
}

// Text returns the concatenation of all text parts in order. File parts are
// skipped.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// NewID generates a new unique identifier for locally created messages and
// sessions. Remote identifiers (threads, runs, fetched messages) are assigned
// by the API and used verbatim.
func NewID() string { return uuid.NewString() }
