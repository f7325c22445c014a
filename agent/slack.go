package agent

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/model"
)

// SlackName is the registry key of the Slack agent.
const SlackName = "slack_agent"

const slackInstruction = `You are an agent that specializes in handling Slack interactions.
For now you will mock data back to the manager (since your tools are not yet implemented yet).
Go along with the requests of the manager agent, eventually returning a successful mocked response.`

// slackStubAck is the fixed acknowledgment used when no model is configured.
const slackStubAck = "Slack message sent successfully."

// SlackAgent mocks Slack actions. With a model it forwards the instruction
// under a mock-Slack system instruction; without one it acknowledges with a
// fixed success message. Real Slack delivery is a future integration seam.
type SlackAgent struct {
	model  model.Model
	logger logging.Logger
}

// SlackOptions configures a SlackAgent.
type SlackOptions struct {
	Logger logging.Logger
}

// NewSlackAgent constructs a SlackAgent. A nil model selects the fixed-ack
// stub variant.
func NewSlackAgent(m model.Model, optFns ...func(o *SlackOptions)) *SlackAgent {
	opts := SlackOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SlackAgent{model: m, logger: logging.OrDefault(opts.Logger)}
}

// Name implements Agent.
func (s *SlackAgent) Name() string { return SlackName }

// Description implements Agent.
func (s *SlackAgent) Description() string {
	return "This agent is responsible for sending messages to Slack. (Tools: send_slack_message(message, channel))"
}

// Chat implements Agent.
func (s *SlackAgent) Chat(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		s.logger.Debug("slack agent stub acknowledgment", "prompt_len", len(prompt))
		return slackStubAck, nil
	}
	resp, err := s.model.Generate(ctx, model.Request{
		Instruction: slackInstruction,
		Prompt:      prompt,
	})
	if err != nil {
		return "", fmt.Errorf("slack agent model call: %w", err)
	}
	return resp.Text, nil
}
