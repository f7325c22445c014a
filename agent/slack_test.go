package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/model"
)

func TestSlackAgentStubAck(t *testing.T) {
	a := NewSlackAgent(nil)

	reply, err := a.Chat(context.Background(), "Send the weekly update to #general")
	require.NoError(t, err)
	assert.Equal(t, "Slack message sent successfully.", reply)
}

func TestSlackAgentForwardsToModel(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueText("Message delivered to #general.")
	a := NewSlackAgent(m)

	reply, err := a.Chat(context.Background(), "Send the weekly update to #general")
	require.NoError(t, err)
	assert.Equal(t, "Message delivered to #general.", reply)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Send the weekly update to #general", reqs[0].Prompt)
	assert.Contains(t, reqs[0].Instruction, "Slack")
}

func TestSlackAgentModelError(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueError(errors.New("timeout"))
	a := NewSlackAgent(m)

	_, err := a.Chat(context.Background(), "send it")
	assert.Error(t, err)
}

func TestSlackAgentIdentity(t *testing.T) {
	a := NewSlackAgent(nil)
	assert.Equal(t, "slack_agent", a.Name())
	assert.NotEmpty(t, a.Description())
}
