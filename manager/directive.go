package manager

import "strings"

// Reserved agent names carrying terminal meaning for the loop. They are
// matched by lower-casing the parsed agent name and comparing exactly.
const (
	// RespondAgentName ends the loop with a final answer.
	RespondAgentName = "response_agent"
	// AskUserAgentName ends the loop pending human input.
	AskUserAgentName = "user_agent"
)

// DirectiveKind classifies a parsed coordinating-model instruction.
type DirectiveKind int

const (
	// DirectiveInvalid marks output with no agent/instruction separator.
	DirectiveInvalid DirectiveKind = iota
	// DirectiveRespond is the terminal final-answer instruction.
	DirectiveRespond
	// DirectiveAskUser suspends the loop pending human clarification.
	DirectiveAskUser
	// DirectiveDispatch routes the instruction to a named worker agent.
	DirectiveDispatch
)

// Directive is the structured form of one line of coordinating-model output,
// expected to be "<agent_name>: <instruction text>". Wrapping the colon-split
// in a tagged type isolates the one fragile parse step; the loop body only
// ever sees structured data.
type Directive struct {
	Kind        DirectiveKind
	Agent       string // trimmed agent name in its original casing
	Instruction string // trimmed text after the first separator
}

// ParseDirective extracts a directive from raw model output. The parsing
// contract: split on the first colon, trim both sides, then match the name
// case-insensitively against the two reserved names; anything else is a
// dispatch to be resolved against the registry.
func ParseDirective(text string) Directive {
	name, rest, ok := strings.Cut(text, ":")
	if !ok {
		return Directive{Kind: DirectiveInvalid}
	}
	name = strings.TrimSpace(name)
	instruction := strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case RespondAgentName:
		return Directive{Kind: DirectiveRespond, Agent: name, Instruction: instruction}
	case AskUserAgentName:
		return Directive{Kind: DirectiveAskUser, Agent: name, Instruction: instruction}
	default:
		return Directive{Kind: DirectiveDispatch, Agent: name, Instruction: instruction}
	}
}
