package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned synchronously by session operations. All other
// failures funnel into the Errored state and are observed via snapshots, not
// returned to callers.
var (
	// ErrSessionBusy is returned by Send while a lifecycle is already in
	// flight. A session supports exactly one in-flight lifecycle at a time.
	ErrSessionBusy = errors.New("session busy: a run lifecycle is already in flight")

	// ErrSessionErrored is returned by Send while a previous failure awaits
	// acknowledgement.
	ErrSessionErrored = errors.New("session errored: acknowledge the error before sending")

	// ErrSessionClosed is returned by operations on a torn-down session.
	ErrSessionClosed = errors.New("session closed")
)

// TransientError wraps a retryable network-level failure of a single
// transport call. Within a poll cycle a bounded number of consecutive
// transient errors is absorbed; elsewhere it surfaces immediately as a
// session-level error so lifecycle steps are never retried with side effects.
type TransientError struct {
	Op  string // transport operation, e.g. "get_run_status"
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient transport error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *TransientError) Unwrap() error { return e.Err }

// ProtocolError wraps a decode or contract violation on a single transport
// call. It is fatal for that call and never retried; cached state (history,
// thread id) is left untouched.
type ProtocolError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ProtocolError) Unwrap() error { return e.Err }

// RunFailedError reports a business-level run failure (failed, cancelled or
// expired status). It is surfaced distinctly from network errors; the session
// returns to Idle on acknowledgement so the user may resend.
type RunFailedError struct {
	RunID  string
	Status RunStatus
}

// Error implements the error interface.
func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run %s ended with status %q", e.RunID, e.Status)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
