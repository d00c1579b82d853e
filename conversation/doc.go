// Package conversation implements the run-orchestration engine: the Session
// state machine that drives a user message through thread creation, message
// submission, run creation, status polling and reply retrieval, merging new
// assistant messages into an ordered, deduplicated history.
//
// The package is composed of three independently testable collaborators
// injected into the Session rather than inherited state:
//
//   - ThreadManager: single-flight creation and caching of the remote thread
//   - Poller: cancellable fixed-cadence run status polling
//   - core.Merge: pure id-deduplicating history merge
//
// A Session executes exactly one send lifecycle at a time. Callers observe
// progress through immutable Snapshot values; failures surface as lifecycle
// state, never as panics or asynchronous errors.
package conversation
