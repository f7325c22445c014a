package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnString(t *testing.T) {
	assert.Equal(t, "User: hello", Turn{Role: RoleUser, Text: "hello"}.String())
	assert.Equal(t, "bare text", Turn{Text: "bare text"}.String())
}

func TestParseTurn(t *testing.T) {
	assert.Equal(t, Turn{Role: "Manager", Text: "slack_agent: send it"},
		ParseTurn("Manager: slack_agent: send it"))
	assert.Equal(t, Turn{Text: "no separator here"}, ParseTurn("no separator here"))
}

func TestTranscriptRoundTrip(t *testing.T) {
	tr := Transcript{}
	tr.Append(RoleUser, "What is 2+2?")
	tr.Append(RoleManager, "calc_agent: compute 2+2")
	tr.Append("calc_agent", "2+2 equals 4")

	lines := tr.Strings()
	require.Equal(t, []string{
		"User: What is 2+2?",
		"Manager: calc_agent: compute 2+2",
		"calc_agent: 2+2 equals 4",
	}, lines)

	decoded := ParseTranscript(lines)
	assert.Equal(t, tr, decoded)
}

func TestTranscriptFirstUserText(t *testing.T) {
	tr := Transcript{}
	assert.Empty(t, tr.FirstUserText())

	tr.Append(RoleManager, "user_agent: which one?")
	tr.Append(RoleUser, "the first one")
	assert.Equal(t, "the first one", tr.FirstUserText())
}

func TestTranscriptCloneIsIndependent(t *testing.T) {
	tr := Transcript{}
	tr.Append(RoleUser, "hello")

	cp := tr.Clone()
	cp.Append(RoleManager, "response_agent: hi")

	assert.Len(t, tr, 1)
	assert.Len(t, cp, 2)
}
