package core

import "strings"

// Reserved transcript roles. Worker agent turns use the agent's registered
// name as the role.
const (
	RoleUser    = "User"
	RoleManager = "Manager"
)

// Turn is a single line of a conversation transcript: a speaker role plus
// free text. Turns are append-only within a loop run.
type Turn struct {
	Role string
	Text string
}

// String encodes the turn in the wire format "Role: text". A turn with an
// empty role encodes to its bare text.
func (t Turn) String() string {
	if t.Role == "" {
		return t.Text
	}
	return t.Role + ": " + t.Text
}

// ParseTurn decodes a transcript line produced by Turn.String. Lines without
// a role separator decode to a turn with an empty role so that encoding and
// decoding round-trip.
func ParseTurn(line string) Turn {
	role, text, ok := strings.Cut(line, ":")
	if !ok {
		return Turn{Text: line}
	}
	return Turn{Role: strings.TrimSpace(role), Text: strings.TrimSpace(text)}
}

// Transcript is the ordered conversation history of one orchestration
// session. It is the unit of resumable state: callers serialize it between
// turns and hand it back to resume the loop.
type Transcript []Turn

// ParseTranscript decodes transcript lines in their wire form.
func ParseTranscript(lines []string) Transcript {
	tr := make(Transcript, 0, len(lines))
	for _, line := range lines {
		tr = append(tr, ParseTurn(line))
	}
	return tr
}

// Strings encodes the transcript into its wire form, one line per turn.
func (tr Transcript) Strings() []string {
	lines := make([]string, 0, len(tr))
	for _, t := range tr {
		lines = append(lines, t.String())
	}
	return lines
}

// Append adds a turn to the transcript.
func (tr *Transcript) Append(role, text string) {
	*tr = append(*tr, Turn{Role: role, Text: text})
}

// Last returns the most recent turn, if any.
func (tr Transcript) Last() (Turn, bool) {
	if len(tr) == 0 {
		return Turn{}, false
	}
	return tr[len(tr)-1], true
}

// FirstUserText returns the text of the earliest user turn, or the empty
// string when the transcript holds none. The manager uses it to recover the
// original request when resuming from a serialized history.
func (tr Transcript) FirstUserText() string {
	for _, t := range tr {
		if t.Role == RoleUser {
			return t.Text
		}
	}
	return ""
}

// Join renders the transcript as newline separated wire-form lines, the shape
// embedded into coordinating-model prompts.
func (tr Transcript) Join() string {
	return strings.Join(tr.Strings(), "\n")
}

// Clone returns an independent copy safe for divergence.
func (tr Transcript) Clone() Transcript {
	cp := make(Transcript, len(tr))
	copy(cp, tr)
	return cp
}
