package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Directive
	}{
		{
			name: "dispatch to named agent",
			text: "slack_agent: Send the weekly update to #general",
			want: Directive{Kind: DirectiveDispatch, Agent: "slack_agent", Instruction: "Send the weekly update to #general"},
		},
		{
			name: "terminal respond",
			text: "response_agent: The answer is 4.",
			want: Directive{Kind: DirectiveRespond, Agent: "response_agent", Instruction: "The answer is 4."},
		},
		{
			name: "ask user",
			text: "user_agent: Which project do you mean?",
			want: Directive{Kind: DirectiveAskUser, Agent: "user_agent", Instruction: "Which project do you mean?"},
		},
		{
			name: "reserved names match case-insensitively",
			text: "Response_Agent: done",
			want: Directive{Kind: DirectiveRespond, Agent: "Response_Agent", Instruction: "done"},
		},
		{
			name: "whitespace is trimmed on both sides",
			text: "  project_agent  :   look up the roadmap  ",
			want: Directive{Kind: DirectiveDispatch, Agent: "project_agent", Instruction: "look up the roadmap"},
		},
		{
			name: "only the first colon separates",
			text: "slack_agent: post this: hello",
			want: Directive{Kind: DirectiveDispatch, Agent: "slack_agent", Instruction: "post this: hello"},
		},
		{
			name: "no separator is invalid",
			text: "I think we should ask the slack agent",
			want: Directive{Kind: DirectiveInvalid},
		},
		{
			name: "empty instruction is preserved",
			text: "user_agent:",
			want: Directive{Kind: DirectiveAskUser, Agent: "user_agent", Instruction: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDirective(tt.text))
		})
	}
}
