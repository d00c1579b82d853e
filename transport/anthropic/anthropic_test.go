package anthropic

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
)

// The tests below exercise the local thread/run bookkeeping only; the model
// call itself is network-bound and covered by the run status contract.

func newLocalClient() *Client {
	client := anthropic.NewClient(option.WithAPIKey("test-key"))
	return NewFromClient(&client)
}

func TestClient_ThreadLifecycle(t *testing.T) {
	c := newLocalClient()
	ctx := context.Background()

	thread, err := c.CreateThread(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, thread.ID)

	msg := core.NewUserMessage("hello")
	require.NoError(t, c.AddMessage(ctx, thread.ID, msg))

	listed, err := c.ListMessages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, msg.ID, listed[0].ID)
	assert.Equal(t, thread.ID, listed[0].ThreadID)
	assert.Equal(t, core.DeliveryConfirmed, listed[0].Delivery)
}

func TestClient_UnknownThreadIsProtocolError(t *testing.T) {
	c := newLocalClient()
	ctx := context.Background()

	err := c.AddMessage(ctx, "missing", core.NewUserMessage("hi"))
	var protoErr *core.ProtocolError
	require.ErrorAs(t, err, &protoErr)

	_, err = c.ListMessages(ctx, "missing")
	require.ErrorAs(t, err, &protoErr)

	_, err = c.GetRunStatus(ctx, "missing", "run_x")
	require.ErrorAs(t, err, &protoErr)
}

func TestClient_UnknownRunIsProtocolError(t *testing.T) {
	c := newLocalClient()
	ctx := context.Background()

	thread, err := c.CreateThread(ctx)
	require.NoError(t, err)

	_, err = c.GetRunStatus(ctx, thread.ID, "run_missing")
	var protoErr *core.ProtocolError
	require.ErrorAs(t, err, &protoErr)
}

func TestClient_CancelledContextIsTransient(t *testing.T) {
	c := newLocalClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CreateThread(ctx)
	assert.True(t, core.IsTransient(err))
}
