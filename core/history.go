package core

// HistoryStore persists ordered message history keyed by session. It is
// append-only: messages are never mutated in place or deleted.
//
// Append must be idempotent at the id level: appending an already-present id
// is a no-op. Deduplication of fetched messages happens in Merge before the
// store ever sees them.
type HistoryStore interface {
	// Append adds the given messages to the session's history, skipping ids
	// already present, and returns the number actually appended.
	Append(sessionID string, msgs []Message) (int, error)

	// Get returns a snapshot of the session's history in insertion order.
	Get(sessionID string) ([]Message, error)
}
