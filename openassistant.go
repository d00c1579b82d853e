// Package openassistant provides a high-level façade over the conversation
// orchestration engine and its service abstractions (transport, history &
// logging) for driving multi-turn assistant conversations. Most applications
// interact with this package by:
//  1. Creating an OpenAssistant via New() with a transport (OpenAI Assistants
//     API or the Anthropic-backed emulation)
//  2. Opening one session per conversation (OpenSession)
//  3. Driving each session with Send / AcknowledgeError and observing its
//     snapshot stream via Subscribe
//
// The façade delegates orchestration to conversation.Session while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing; production apps typically supply a durable history store and a
// structured logger.
package openassistant

import (
	"time"

	"github.com/Gunnarguy/OpenAssistant-sub002/conversation"
	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/history"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

// Options configures the OpenAssistant instance.
type Options struct {
	// HistoryStore mirrors confirmed messages across all sessions. Defaults
	// to an in-memory implementation.
	HistoryStore core.HistoryStore

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger

	// PollInterval is the run status cadence applied to every session.
	// Defaults to 2s.
	PollInterval time.Duration

	// MaxConsecutiveTransient bounds consecutive transient poll errors per
	// cycle. Defaults to 3.
	MaxConsecutiveTransient int
}

// OpenAssistant is the high-level façade aggregating the transport and the
// shared services sessions are wired with.
type OpenAssistant struct {
	transport core.Transport
	opts      Options
}

// New creates a new OpenAssistant instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(transport core.Transport, optFns ...func(o *Options)) *OpenAssistant {
	opts := Options{
		HistoryStore:            history.NewInMemoryStore(),
		Logger:                  logging.NoOpLogger{},
		PollInterval:            2 * time.Second,
		MaxConsecutiveTransient: 3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAssistant{transport: transport, opts: opts}
}

// OpenSession creates the orchestrator for one conversation against the given
// assistant. An empty sessionID is replaced with a generated identifier.
// Sessions are independent; each owns its thread, run lifecycle and history.
func (a *OpenAssistant) OpenSession(sessionID, assistantID string) *conversation.Session {
	if sessionID == "" {
		sessionID = core.NewID()
	}
	return conversation.NewSession(sessionID, assistantID, a.transport, func(o *conversation.Options) {
		o.HistoryStore = a.opts.HistoryStore
		o.Logger = a.opts.Logger
		o.PollInterval = a.opts.PollInterval
		o.MaxConsecutiveTransient = a.opts.MaxConsecutiveTransient
	})
}

// History returns the persisted message mirror for a session, usable after
// the session itself is closed.
func (a *OpenAssistant) History(sessionID string) ([]core.Message, error) {
	return a.opts.HistoryStore.Get(sessionID)
}
