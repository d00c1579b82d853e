package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/internal/testutil"
	"github.com/Gunnarguy/OpenAssistant-sub002/logging"
)

func fastPoller(ft *testutil.FakeTransport) *Poller {
	return NewPoller(ft, func(o *PollerOptions) { o.Interval = 2 * time.Millisecond })
}

func TestDecideByStatus(t *testing.T) {
	assert.Equal(t, DecisionSuccess, DecideByStatus(core.RunCompleted))
	assert.Equal(t, DecisionFailure, DecideByStatus(core.RunFailed))
	assert.Equal(t, DecisionFailure, DecideByStatus(core.RunCancelled))
	assert.Equal(t, DecisionFailure, DecideByStatus(core.RunExpired))
	assert.Equal(t, DecisionContinue, DecideByStatus(core.RunQueued))
	assert.Equal(t, DecisionContinue, DecideByStatus(core.RunInProgress))
	assert.Equal(t, DecisionContinue, DecideByStatus(core.RunRequiresAction))
}

func TestPoller_PollsUntilTerminalStatus(t *testing.T) {
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{
		{Status: core.RunInProgress},
		{Status: core.RunInProgress},
		{Status: core.RunCompleted},
	}}
	p := fastPoller(ft)

	status, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	require.NoError(t, err)
	assert.Equal(t, core.RunCompleted, status)
	assert.Equal(t, 3, ft.StatusCallsFor("r1"))
}

func TestPoller_EscalatesAfterConsecutiveTransientErrors(t *testing.T) {
	boom := errors.New("connection reset")
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{{Err: boom}}}
	p := fastPoller(ft)

	_, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	assert.Equal(t, 3, ft.StatusCallsFor("r1"))
}

func TestPoller_ProtocolErrorFailsImmediately(t *testing.T) {
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{
		{Err: &core.ProtocolError{Op: "get_run_status", Err: errors.New("bad payload")}},
	}}
	p := fastPoller(ft)

	_, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	var protoErr *core.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.False(t, core.IsTransient(err))
	assert.Equal(t, 1, ft.StatusCallsFor("r1"), "a protocol error must not be retried")
}

func TestPoller_EscalationPreservesTransientError(t *testing.T) {
	cause := &core.TransientError{Op: "get_run_status", Err: errors.New("connection reset")}
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{{Err: cause}}}
	p := fastPoller(ft)

	_, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	var te *core.TransientError
	require.ErrorAs(t, err, &te)
	assert.Same(t, cause, te, "escalation surfaces the transport's own error, not a re-wrap")
	assert.Equal(t, 3, ft.StatusCallsFor("r1"))
}

func TestPoller_TransientCounterResetsOnSuccess(t *testing.T) {
	boom := errors.New("timeout")
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{
		{Err: boom},
		{Err: boom},
		{Status: core.RunInProgress},
		{Err: boom},
		{Err: boom},
		{Status: core.RunCompleted},
	}}
	p := fastPoller(ft)

	status, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	require.NoError(t, err)
	assert.Equal(t, core.RunCompleted, status)
	assert.Equal(t, 6, ft.StatusCallsFor("r1"))
}

func TestPoller_NewCycleSupersedesPrevious(t *testing.T) {
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{{Status: core.RunInProgress}}}
	p := fastPoller(ft)

	r1Done := make(chan error, 1)
	go func() {
		_, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)
		r1Done <- err
	}()

	require.Eventually(t, func() bool { return ft.StatusCallsFor("r1") >= 2 }, time.Second, time.Millisecond)

	r2Done := make(chan error, 1)
	go func() {
		_, err := p.Poll(context.Background(), "t1", "r2", DecideByStatus)
		r2Done <- err
	}()

	select {
	case err := <-r1Done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("superseded cycle did not terminate")
	}

	require.Eventually(t, func() bool { return ft.StatusCallsFor("r2") >= 1 }, time.Second, time.Millisecond)
	r1Ticks := ft.StatusCallsFor("r1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, r1Ticks, ft.StatusCallsFor("r1"), "no further status checks for a superseded run")

	p.Stop()
	select {
	case err := <-r2Done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("stopped cycle did not terminate")
	}
}

func TestPoller_StopCancelsActiveCycle(t *testing.T) {
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{{Status: core.RunInProgress}}}
	p := fastPoller(ft)

	done := make(chan error, 1)
	go func() {
		_, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)
		done <- err
	}()

	require.Eventually(t, func() bool { return ft.StatusCallsFor("r1") >= 1 }, time.Second, time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cycle did not terminate after Stop")
	}
}

type pollCycleRecorder struct {
	logging.NoOpLogger
	mu    sync.Mutex
	calls int
	runID string
	ticks int
	final string
}

func (r *pollCycleRecorder) LogPollCycle(runID string, ticks int, dur time.Duration, final string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.runID = runID
	r.ticks = ticks
	r.final = final
}

func TestPoller_ReportsCycleMetricsToCapableLogger(t *testing.T) {
	rec := &pollCycleRecorder{}
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{
		{Status: core.RunInProgress},
		{Status: core.RunCompleted},
	}}
	p := NewPoller(ft, func(o *PollerOptions) {
		o.Interval = 2 * time.Millisecond
		o.Logger = rec
	})

	status, err := p.Poll(context.Background(), "t1", "r1", DecideByStatus)

	require.NoError(t, err)
	assert.Equal(t, core.RunCompleted, status)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "r1", rec.runID)
	assert.Equal(t, 2, rec.ticks)
	assert.Equal(t, "completed", rec.final)
}

func TestPoller_CallerContextCancellation(t *testing.T) {
	ft := &testutil.FakeTransport{Statuses: []testutil.StatusStep{{Status: core.RunInProgress}}}
	p := fastPoller(ft)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Poll(ctx, "t1", "r1", DecideByStatus)
		done <- err
	}()

	require.Eventually(t, func() bool { return ft.StatusCallsFor("r1") >= 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cycle did not terminate after context cancellation")
	}
}
