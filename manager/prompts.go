package manager

import (
	"fmt"
	"strings"

	"github.com/taskhive/taskhive/core"
)

// managerInstruction renders the coordinating model's system instruction with
// the current agent roster. The two pseudo-agents are always listed so the
// model knows how to terminate the loop.
func managerInstruction(reg Registry) string {
	var roster strings.Builder
	roster.WriteString("-response_agent: Provide a summary of actions to the agent so it can respond to the user. (Tools: respond_to_user(summary))\n")
	roster.WriteString("-user_agent: This agent is helpful for getting more clarification from the user (Tools: ask_user(question))\n")
	for _, a := range reg.Agents() {
		fmt.Fprintf(&roster, "-%s: %s\n", a.Name(), a.Description())
	}

	return fmt.Sprintf(`You are a manager agent that coordinates a team of specialized agents to fulfill user requests.
You do not perform tasks yourself; you delegate to exactly one agent per turn.

Available agents:
%s
Respond with exactly one line in the format:
<agent_name>: <instruction for that agent>

Use response_agent when you have gathered enough information to answer the user.
Use user_agent when you need clarification from the user before proceeding.`, roster.String())
}

// nextStepPrompt asks the coordinating model for its next directive after an
// agent turn, replaying the full conversation so the loop stays stateless
// between model calls.
func nextStepPrompt(history core.Transcript, agentName, agentReply string) string {
	return fmt.Sprintf(`Original user request: %s

Conversation so far:
%s

Agent %s just responded with: %s

What should happen next? Remember to use response_agent when you have enough information to respond to the user or when you cannot complete the request.`,
		history.FirstUserText(), history.Join(), agentName, agentReply)
}

// resumePrompt asks the coordinating model for its next directive when a
// conversation is resumed with a fresh user turn (typically an answer to a
// user_agent question).
func resumePrompt(history core.Transcript) string {
	return fmt.Sprintf(`Original user request: %s

Conversation so far:
%s

The user just provided new input. What should happen next? Remember to use response_agent when you have enough information to respond to the user or when you cannot complete the request.`,
		history.FirstUserText(), history.Join())
}
