// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer AssistantLogger with contextual
// helpers (session, thread, run, component) and domain specific helpers for
// transport calls and poll cycles.
package logging
