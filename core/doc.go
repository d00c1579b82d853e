// Package core provides the foundational domain types and contracts used by
// OpenAssistant. It defines the core abstractions for:
//
//   - Messages (immutable role-based content records with typed parts)
//   - Threads and Runs (the remote conversation container and its units of work)
//   - Session lifecycle states and observable snapshots
//   - The Transport contract for the remote assistant API
//   - The HistoryStore contract for durable, id-deduplicated message history
//
// The package intentionally keeps implementation concerns (HTTP transports,
// persistence, orchestration) out of scope, exposing small interfaces so
// backends can be swapped without touching the orchestration logic.
package core
