package openassistant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gunnarguy/OpenAssistant-sub002/core"
	"github.com/Gunnarguy/OpenAssistant-sub002/internal/testutil"
)

func TestOpenAssistant_EndToEnd(t *testing.T) {
	m1 := testutil.NewMessageBuilder().ID("m1").Assistant().Thread("t1").Run("r1").Text("42").Build()
	ft := &testutil.FakeTransport{ThreadID: "t1", RunID: "r1", Messages: []core.Message{m1}}

	assistant := New(ft, func(o *Options) {
		o.PollInterval = 2 * time.Millisecond
	})

	sess := assistant.OpenSession("s1", "asst_1")
	defer sess.Close()

	require.NoError(t, sess.Send(context.Background(), "what is the answer?"))
	require.Eventually(t, func() bool { return sess.State() == core.StateIdle }, 2*time.Second, time.Millisecond)

	hist := sess.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "what is the answer?", hist[0].Text())
	assert.Equal(t, "42", hist[1].Text())

	mirrored, err := assistant.History("s1")
	require.NoError(t, err)
	assert.Len(t, mirrored, 2)
}

func TestOpenAssistant_GeneratesSessionID(t *testing.T) {
	assistant := New(&testutil.FakeTransport{})

	sess := assistant.OpenSession("", "asst_1")
	defer sess.Close()

	assert.NotEmpty(t, sess.ID())
}
