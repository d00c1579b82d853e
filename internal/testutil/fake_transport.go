package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
)

// Interface compliance (compile-time assertion)
var _ core.Transport = (*FakeTransport)(nil)

// StatusStep scripts one GetRunStatus result.
type StatusStep struct {
	Status core.RunStatus
	Err    error
}

// FakeTransport is a scripted core.Transport for tests. Configure the public
// fields before use; every operation records its calls so tests can assert
// exact transport interaction counts and ordering. The zero value is usable:
// it creates thread "t1", accepts messages, starts run "r1" and reports
// completed immediately with an empty message list.
//
// Status checks consume Statuses in order; the final step repeats once the
// script is exhausted. All methods honor context cancellation during their
// configured delays.
type FakeTransport struct {
	ThreadID          string
	CreateThreadErr   error
	CreateThreadDelay time.Duration

	AddMessageErr   error
	AddMessageDelay time.Duration

	RunID        string
	CreateRunErr error

	Statuses []StatusStep

	Messages []core.Message
	ListErr  error

	mu                sync.Mutex
	createThreadCalls int
	addMessageCalls   int
	createRunCalls    int
	statusCalls       []string
	statusIdx         int
	listCalls         int
	added             []core.Message
}

func (f *FakeTransport) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CreateThread returns the scripted thread (default "t1") or error.
func (f *FakeTransport) CreateThread(ctx context.Context) (core.Thread, error) {
	if err := f.sleep(ctx, f.CreateThreadDelay); err != nil {
		return core.Thread{}, &core.TransientError{Op: "create_thread", Err: err}
	}
	f.mu.Lock()
	f.createThreadCalls++
	f.mu.Unlock()
	if f.CreateThreadErr != nil {
		return core.Thread{}, f.CreateThreadErr
	}
	id := f.ThreadID
	if id == "" {
		id = "t1"
	}
	return core.Thread{ID: id, CreatedAt: time.Now()}, nil
}

// AddMessage records the submitted message or returns the scripted error.
func (f *FakeTransport) AddMessage(ctx context.Context, threadID string, msg core.Message) error {
	if err := f.sleep(ctx, f.AddMessageDelay); err != nil {
		return &core.TransientError{Op: "add_message", Err: err}
	}
	f.mu.Lock()
	f.addMessageCalls++
	if f.AddMessageErr == nil {
		m := msg
		m.ThreadID = threadID
		f.added = append(f.added, m)
	}
	f.mu.Unlock()
	return f.AddMessageErr
}

// CreateRun returns the scripted run (default "r1") or error.
func (f *FakeTransport) CreateRun(ctx context.Context, threadID, assistantID string) (core.Run, error) {
	f.mu.Lock()
	f.createRunCalls++
	f.mu.Unlock()
	if f.CreateRunErr != nil {
		return core.Run{}, f.CreateRunErr
	}
	id := f.RunID
	if id == "" {
		id = "r1"
	}
	return core.Run{ID: id, ThreadID: threadID, AssistantID: assistantID, Status: core.RunQueued}, nil
}

// GetRunStatus consumes the next scripted status step, repeating the final
// step once exhausted. With no script it reports completed.
func (f *FakeTransport) GetRunStatus(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", &core.TransientError{Op: "get_run_status", Err: err}
	}
	f.mu.Lock()
	f.statusCalls = append(f.statusCalls, runID)
	var step StatusStep
	if len(f.Statuses) == 0 {
		step = StatusStep{Status: core.RunCompleted}
	} else if f.statusIdx < len(f.Statuses) {
		step = f.Statuses[f.statusIdx]
		f.statusIdx++
	} else {
		step = f.Statuses[len(f.Statuses)-1]
	}
	f.mu.Unlock()
	return step.Status, step.Err
}

// ListMessages returns the scripted message list or error.
func (f *FakeTransport) ListMessages(ctx context.Context, threadID string) ([]core.Message, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]core.Message, len(f.Messages))
	copy(out, f.Messages)
	return out, nil
}

// CreateThreadCalls returns how many thread creations were attempted.
func (f *FakeTransport) CreateThreadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createThreadCalls
}

// AddMessageCalls returns how many message submissions were attempted.
func (f *FakeTransport) AddMessageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addMessageCalls
}

// CreateRunCalls returns how many run creations were attempted.
func (f *FakeTransport) CreateRunCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createRunCalls
}

// StatusCalls returns the run ids of all status checks in call order.
func (f *FakeTransport) StatusCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.statusCalls))
	copy(out, f.statusCalls)
	return out
}

// StatusCallsFor counts status checks issued for one run.
func (f *FakeTransport) StatusCallsFor(runID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.statusCalls {
		if id == runID {
			n++
		}
	}
	return n
}

// ListCalls returns how many message list fetches were attempted.
func (f *FakeTransport) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// AddedMessages returns all successfully submitted messages.
func (f *FakeTransport) AddedMessages() []core.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Message, len(f.added))
	copy(out, f.added)
	return out
}

// TotalCalls sums every transport operation performed so far.
func (f *FakeTransport) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createThreadCalls + f.addMessageCalls + f.createRunCalls + len(f.statusCalls) + f.listCalls
}

// String aids debugging of failed assertions.
func (f *FakeTransport) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("FakeTransport{threads:%d messages:%d runs:%d status:%d list:%d}",
		f.createThreadCalls, f.addMessageCalls, f.createRunCalls, len(f.statusCalls), f.listCalls)
}
