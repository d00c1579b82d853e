// Package history houses concrete implementations of core.HistoryStore.
// The interface itself lives in the core package to centralize domain
// contracts; keeping only implementations here prevents higher level packages
// (conversation, transports) from depending on concrete storage.
//
// Add durable backends (SQLite, file-backed, etc.) alongside the in-memory
// store without changing any calling code; only the wiring layer decides
// which implementation to instantiate.
package history
