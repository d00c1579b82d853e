package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/history"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

// Options holds dependency and configuration overrides passed to NewSession.
type Options struct {
	// HistoryStore receives the durable mirror of confirmed messages.
	// Defaults to an in-memory store.
	HistoryStore core.HistoryStore
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
	// PollInterval is the fixed run status cadence. Defaults to 2s.
	PollInterval time.Duration
	// MaxConsecutiveTransient bounds consecutive transient poll errors.
	// Defaults to 3.
	MaxConsecutiveTransient int
	// SubscriberBuffer sets the snapshot channel buffer per subscriber.
	// Defaults to 16; a slow subscriber drops intermediate snapshots rather
	// than blocking the lifecycle.
	SubscriberBuffer int
}

// Session is the run orchestrator for one conversation. It drives the send
// lifecycle
//
//	Idle → CreatingThread → SubmittingMessage → RunStarting → Polling → Completing → Idle
//
// with Errored reachable from every non-terminal state and Stopped as the
// teardown terminal. Exactly one lifecycle is in flight at a time; Send while
// busy is rejected, never interleaved or silently queued.
//
// All state transitions execute under a per-session mutex, and the session is
// the only writer of its state and history. Callers observe progress through
// Subscribe or Snapshot; failures surface as the Errored state carrying a
// typed cause, never as panics or asynchronous errors.
type Session struct {
	id          string
	assistantID string
	transport   core.Transport
	store       core.HistoryStore
	logger      logging.Logger

	threads *ThreadManager
	poller  *Poller

	mu          sync.Mutex
	state       core.SessionState
	cause       error
	messages    []core.Message
	activeRunID string
	runCancel   context.CancelFunc
	closed      bool

	subMu     sync.Mutex
	subs      map[uint64]chan core.Snapshot
	nextSub   uint64
	subBuffer int
}

// NewSession constructs a session bound to one remote conversation. The
// transport is required; everything else has safe defaults.
func NewSession(sessionID, assistantID string, transport core.Transport, optFns ...func(o *Options)) *Session {
	opts := Options{
		PollInterval:            DefaultPollerOptions.Interval,
		MaxConsecutiveTransient: DefaultPollerOptions.MaxConsecutiveTransient,
		SubscriberBuffer:        16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if al, ok := opts.Logger.(*logging.AssistantLogger); ok {
		opts.Logger = al.WithComponent("session").WithSession(sessionID)
	}
	if opts.HistoryStore == nil {
		opts.HistoryStore = history.NewInMemoryStore()
	}
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = 16
	}

	s := &Session{
		id:          sessionID,
		assistantID: assistantID,
		transport:   transport,
		store:       opts.HistoryStore,
		logger:      opts.Logger,
		threads:     NewThreadManager(transport, opts.Logger),
		subs:        make(map[uint64]chan core.Snapshot),
	}
	s.poller = NewPoller(transport, func(o *PollerOptions) {
		o.Interval = opts.PollInterval
		o.MaxConsecutiveTransient = opts.MaxConsecutiveTransient
		o.Logger = opts.Logger
	})
	s.subBuffer = opts.SubscriberBuffer
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Send accepts user input and starts the asynchronous run lifecycle. It
// returns immediately: nil on acceptance, ErrSessionBusy while a lifecycle is
// in flight, ErrSessionErrored while an error awaits acknowledgement, and
// ErrSessionClosed after teardown.
//
// The user message is appended to history optimistically (DeliveryPending)
// before any network call, so it is always visible before any assistant reply
// the run produces. The provided context bounds the whole lifecycle; Close
// cancels it as well.
func (s *Session) Send(ctx context.Context, text string) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return core.ErrSessionClosed
	case s.state == core.StateErrored:
		s.mu.Unlock()
		return core.ErrSessionErrored
	case s.state != core.StateIdle:
		s.mu.Unlock()
		return core.ErrSessionBusy
	}

	userMsg := core.NewUserMessage(text)
	s.messages = append(s.messages, userMsg)

	if _, cached := s.threads.ThreadID(); cached {
		s.state = core.StateSubmittingMessage
	} else {
		s.state = core.StateCreatingThread
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel
	s.mu.Unlock()

	s.publish()
	s.logger.Debug("send accepted", "session_id", s.id, "message_id", userMsg.ID)

	go s.runLifecycle(runCtx, userMsg)
	return nil
}

// runLifecycle executes one full send lifecycle. Every failure funnels into
// fail; teardown mid-flight exits without posting further updates.
func (s *Session) runLifecycle(ctx context.Context, userMsg core.Message) {
	threadID, err := s.threads.Ensure(ctx)
	if err != nil {
		s.markDelivery(userMsg.ID, "", core.DeliveryFailed)
		s.fail(err)
		return
	}
	s.transition(core.StateSubmittingMessage)

	if err := s.transport.AddMessage(ctx, threadID, userMsg); err != nil {
		s.markDelivery(userMsg.ID, threadID, core.DeliveryFailed)
		s.fail(err)
		return
	}
	s.markDelivery(userMsg.ID, threadID, core.DeliveryConfirmed)

	confirmed := userMsg
	confirmed.ThreadID = threadID
	confirmed.Delivery = core.DeliveryConfirmed
	if _, err := s.store.Append(s.id, []core.Message{confirmed}); err != nil {
		s.logger.Warn("history store append failed for user message", "session_id", s.id, "error", err)
	}

	s.transition(core.StateRunStarting)
	run, err := s.transport.CreateRun(ctx, threadID, s.assistantID)
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	s.activeRunID = run.ID
	s.mu.Unlock()
	s.transition(core.StatePolling)

	status, err := s.poller.Poll(ctx, threadID, run.ID, DecideByStatus)
	if err != nil {
		if errors.Is(err, context.Canceled) && s.isClosed() {
			return
		}
		s.fail(err)
		return
	}
	if !status.Succeeded() {
		s.fail(&core.RunFailedError{RunID: run.ID, Status: status})
		return
	}

	s.transition(core.StateCompleting)
	fetched, err := s.transport.ListMessages(ctx, threadID)
	if err != nil {
		// A failed fetch never corrupts cached state; existing history stays.
		s.fail(err)
		return
	}
	s.complete(run.ID, fetched)
}

// complete merges newly fetched assistant messages into history as one atomic
// batch and returns the session to Idle.
func (s *Session) complete(runID string, fetched []core.Message) {
	assistant := make([]core.Message, 0, len(fetched))
	for _, m := range fetched {
		if m.Role != core.RoleAssistant {
			continue
		}
		m.Delivery = core.DeliveryConfirmed
		assistant = append(assistant, m)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	appended := core.Merge(s.messages, assistant)
	s.messages = append(s.messages, appended...)
	s.activeRunID = ""
	cancel := s.runCancel
	s.runCancel = nil
	s.state = core.StateIdle
	s.mu.Unlock()

	// Release the lifecycle context; it must not linger on a long-lived
	// caller context until the parent is cancelled.
	if cancel != nil {
		cancel()
	}

	if len(appended) > 0 {
		if _, err := s.store.Append(s.id, appended); err != nil {
			s.logger.Warn("history store append failed for run output", "session_id", s.id, "run_id", runID, "error", err)
		}
	}
	s.logger.Info("run completed", "session_id", s.id, "run_id", runID, "appended", len(appended))
	s.publish()
}

// fail moves the session into Errored carrying the typed cause. No-op after
// teardown so a cancelled lifecycle posts nothing.
func (s *Session) fail(cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = core.StateErrored
	s.cause = cause
	cancel := s.runCancel
	s.runCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.logger.Error("run lifecycle failed", "session_id", s.id, "error", cause)
	s.publish()
}

// AcknowledgeError dismisses a surfaced error, returning the session to Idle.
// The active run id is cleared; the thread id stays cached since the thread
// remains valid even if a run failed. History is never discarded.
func (s *Session) AcknowledgeError() {
	s.mu.Lock()
	if s.closed || s.state != core.StateErrored {
		s.mu.Unlock()
		return
	}
	s.state = core.StateIdle
	s.cause = nil
	s.activeRunID = ""
	s.mu.Unlock()
	s.publish()
}

// Close tears the session down: the in-flight lifecycle (if any) is
// cancelled, the poller stops, and the session enters the terminal Stopped
// state. One final Stopped snapshot is delivered, then all subscriber
// channels are closed. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = core.StateStopped
	s.cause = nil
	if s.runCancel != nil {
		s.runCancel()
		s.runCancel = nil
	}
	s.mu.Unlock()

	s.poller.Stop()
	s.publish()

	s.subMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()
	s.logger.Info("session closed", "session_id", s.id)
}

// Subscribe registers an observer of session snapshots. The returned channel
// receives a snapshot after every state transition; the cancel func
// unregisters and closes it. Slow subscribers drop intermediate snapshots
// instead of blocking the lifecycle.
func (s *Session) Subscribe() (<-chan core.Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan core.Snapshot, s.subBuffer)
	if s.isClosed() {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if ch, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Snapshot returns the current observable state: lifecycle state, typed error
// cause if any, and a copy of the history.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current lifecycle state.
func (s *Session) State() core.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the typed cause while the session is Errored, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// History returns a copy of the session's ordered message history.
func (s *Session) History() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ThreadID returns the cached remote thread id, if one was created.
func (s *Session) ThreadID() (string, bool) { return s.threads.ThreadID() }

// ActiveRunID returns the id of the current non-terminal run, if any.
func (s *Session) ActiveRunID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRunID, s.activeRunID != ""
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// transition moves to the given state and publishes, unless torn down.
func (s *Session) transition(state core.SessionState) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.publish()
}

// markDelivery updates the delivery state (and thread id, once known) of the
// optimistic user message in place. The message stays in history either way:
// failed submissions are flagged, never dropped.
func (s *Session) markDelivery(messageID, threadID string, d core.Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Delivery = d
			if threadID != "" {
				s.messages[i].ThreadID = threadID
			}
			return
		}
	}
}

func (s *Session) snapshotLocked() core.Snapshot {
	hist := make([]core.Message, len(s.messages))
	copy(hist, s.messages)
	return core.Snapshot{SessionID: s.id, State: s.state, Err: s.cause, History: hist}
}

// publish fans the current snapshot out to all subscribers without blocking;
// a full subscriber buffer drops the snapshot for that subscriber.
func (s *Session) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.logger.Debug("subscriber buffer full, snapshot dropped", "session_id", s.id, "subscriber", id)
		}
	}
}
