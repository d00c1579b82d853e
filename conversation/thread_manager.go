package conversation

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

// ThreadManager owns creation and identity of the remote conversation thread
// for one session. Creation is single-flight: concurrent callers of Ensure
// with no cached id collapse into one CreateThread call and all receive the
// same result. On failure the in-flight marker is cleared so a later call may
// retry; the failure is surfaced to every waiter.
type ThreadManager struct {
	transport core.Transport
	logger    logging.Logger

	group singleflight.Group

	mu       sync.RWMutex
	threadID string
}

// NewThreadManager constructs a ThreadManager for a single session. A nil
// logger defaults to NoOpLogger.
func NewThreadManager(transport core.Transport, logger logging.Logger) *ThreadManager {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ThreadManager{transport: transport, logger: logger}
}

// ThreadID returns the cached thread id, if any.
func (m *ThreadManager) ThreadID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.threadID, m.threadID != ""
}

// Ensure returns the session's thread id, creating the remote thread on first
// use. A cached id is returned without a network call.
func (m *ThreadManager) Ensure(ctx context.Context) (string, error) {
	if id, ok := m.ThreadID(); ok {
		return id, nil
	}
	v, err, shared := m.group.Do("create", func() (interface{}, error) {
		// A racing caller may have finished creation between the cache check
		// and joining the flight.
		if id, ok := m.ThreadID(); ok {
			return id, nil
		}
		thread, err := m.transport.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.threadID = thread.ID
		m.mu.Unlock()
		m.logger.Info("thread created", "thread_id", thread.ID)
		return thread.ID, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		m.logger.Debug("thread creation shared across concurrent callers", "thread_id", v.(string))
	}
	return v.(string), nil
}
