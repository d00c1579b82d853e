// Package testutil provides shared helpers for tests: a fluent message
// builder and a scripted fake transport with per-operation call counters and
// error injection. Not intended for use outside this module's tests.
package testutil
