package core

// SessionState enumerates the lifecycle states of a conversation session's
// run orchestration. A session executes exactly one send lifecycle at a time;
// transitions are serialized by the owning session.
type SessionState int

const (
	// StateIdle means no lifecycle is in flight; Send is accepted.
	StateIdle SessionState = iota
	// StateCreatingThread means the remote thread is being created.
	StateCreatingThread
	// StateSubmittingMessage means the user message is being submitted.
	StateSubmittingMessage
	// StateRunStarting means the run is being created.
	StateRunStarting
	// StatePolling means the run status is being polled until terminal.
	StatePolling
	// StateCompleting means new messages are being fetched and merged.
	StateCompleting
	// StateErrored means a lifecycle step failed; the typed cause is carried
	// on the snapshot until acknowledged.
	StateErrored
	// StateStopped is the terminal teardown state. A stopped session rejects
	// all further operations and posts no further updates.
	StateStopped
)

// String returns a stable lowercase name for logging and snapshots.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingThread:
		return "creating_thread"
	case StateSubmittingMessage:
		return "submitting_message"
	case StateRunStarting:
		return "run_starting"
	case StatePolling:
		return "polling"
	case StateCompleting:
		return "completing"
	case StateErrored:
		return "errored"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Busy reports whether a send lifecycle is currently in flight. Send is only
// accepted while the session is not busy, not errored and not stopped.
func (s SessionState) Busy() bool {
	switch s {
	case StateCreatingThread, StateSubmittingMessage, StateRunStarting, StatePolling, StateCompleting:
		return true
	default:
		return false
	}
}

// Snapshot is the immutable observable state of a session: current lifecycle
// state, the typed cause if errored, and a copy of the history.
// Sessions emit a snapshot to every subscriber after each transition.
type Snapshot struct {
	SessionID string
	State     SessionState
	Err       error
	History   []Message
}
