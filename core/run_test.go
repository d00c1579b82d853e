package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatus_Terminal(t *testing.T) {
	terminal := []RunStatus{RunCompleted, RunFailed, RunCancelled, RunExpired}
	for _, s := range terminal {
		assert.Truef(t, s.Terminal(), "%s should be terminal", s)
	}

	live := []RunStatus{RunQueued, RunInProgress, RunRequiresAction}
	for _, s := range live {
		assert.Falsef(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestRunStatus_Succeeded(t *testing.T) {
	assert.True(t, RunCompleted.Succeeded())
	assert.False(t, RunFailed.Succeeded())
	assert.False(t, RunInProgress.Succeeded())
}

func TestSessionState_Busy(t *testing.T) {
	assert.False(t, StateIdle.Busy())
	assert.False(t, StateErrored.Busy())
	assert.False(t, StateStopped.Busy())
	assert.True(t, StatePolling.Busy())
	assert.True(t, StateCreatingThread.Busy())
}

func TestMessage_Text(t *testing.T) {
	m := Message{Content: []Part{TextPart{Text: "hello "}, FilePart{FileID: "f1"}, TextPart{Text: "world"}}}
	assert.Equal(t, "hello world", m.Text())
}

func TestNewUserMessage(t *testing.T) {
	m := NewUserMessage("hi")
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, RoleUser, m.Role)
	assert.Equal(t, DeliveryPending, m.Delivery)
	assert.Equal(t, "hi", m.Text())
}
