package core

import "time"

// RunStatus enumerates the remote lifecycle states of a run. Values mirror
// the wire representation of the assistant API.
type RunStatus string

const (
	// RunQueued means the run was accepted but has not started processing.
	RunQueued RunStatus = "queued"
	// RunInProgress means the assistant is actively processing the thread.
	RunInProgress RunStatus = "in_progress"
	// RunRequiresAction means the run is waiting on client-side input (e.g.
	// tool outputs). The orchestrator keeps polling through this state.
	RunRequiresAction RunStatus = "requires_action"
	// RunCompleted is the terminal success state.
	RunCompleted RunStatus = "completed"
	// RunFailed is a terminal failure state reported by the API.
	RunFailed RunStatus = "failed"
	// RunCancelled is a terminal state for externally cancelled runs.
	RunCancelled RunStatus = "cancelled"
	// RunExpired is a terminal state for runs the API timed out.
	RunExpired RunStatus = "expired"
)

// Terminal reports whether the status ends the polling cycle.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the run finished producing messages.
func (s RunStatus) Succeeded() bool { return s == RunCompleted }

// Run is a server-side unit of work in which the assistant processes a thread
// and produces new messages. The orchestrator tracks only the current run per
// session; historical runs are not retained beyond the messages they produced.
type Run struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id"`
	Status      RunStatus `json:"status"`
}

// Thread is the remote identifier grouping all messages of one conversation.
// It is created at most once per session and cached for the session lifetime.
type Thread struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
