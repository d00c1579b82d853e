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
)

func TestThreadManager_ConcurrentEnsureIsSingleFlight(t *testing.T) {
	ft := &testutil.FakeTransport{ThreadID: "t1", CreateThreadDelay: 20 * time.Millisecond}
	tm := NewThreadManager(ft, nil)

	const callers = 10
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = tm.Ensure(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "t1", ids[i])
	}
	assert.Equal(t, 1, ft.CreateThreadCalls())
}

func TestThreadManager_CachedIDSkipsNetwork(t *testing.T) {
	ft := &testutil.FakeTransport{ThreadID: "t1"}
	tm := NewThreadManager(ft, nil)

	_, err := tm.Ensure(context.Background())
	require.NoError(t, err)

	id, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
	assert.Equal(t, 1, ft.CreateThreadCalls())

	cached, ok := tm.ThreadID()
	assert.True(t, ok)
	assert.Equal(t, "t1", cached)
}

func TestThreadManager_FailureClearsInFlightForRetry(t *testing.T) {
	boom := &core.TransientError{Op: "create_thread", Err: errors.New("boom")}
	ft := &testutil.FakeTransport{ThreadID: "t1", CreateThreadErr: boom}
	tm := NewThreadManager(ft, nil)

	_, err := tm.Ensure(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	_, ok := tm.ThreadID()
	assert.False(t, ok)

	ft.CreateThreadErr = nil
	id, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
	assert.Equal(t, 2, ft.CreateThreadCalls())
}
