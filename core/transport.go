package core

import "context"

// Transport issues authenticated requests against the remote assistant API.
// Implementations own authentication, request shaping and request-level
// retry/backoff; the orchestrator treats each operation as a black box that
// either succeeds or fails with a typed error.
//
// Failure contract: network-level failures are reported as *TransientError,
// decode/contract violations as *ProtocolError. Implementations must respect
// context cancellation on every call.
type Transport interface {
	// CreateThread creates a new remote conversation thread.
	CreateThread(ctx context.Context) (Thread, error)

	// AddMessage submits a user message to the thread.
	AddMessage(ctx context.Context, threadID string, msg Message) error

	// CreateRun starts a new run of the given assistant over the thread.
	CreateRun(ctx context.Context, threadID, assistantID string) (Run, error)

	// GetRunStatus fetches the current status of a run.
	GetRunStatus(ctx context.Context, threadID, runID string) (RunStatus, error)

	// ListMessages returns all messages of the thread in creation order.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}
