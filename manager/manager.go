// Package manager implements the conversation-driven orchestration loop. A
// coordinating language model emits one "<agent_name>: <instruction>" line per
// turn; the loop parses it, dispatches to the named worker agent, feeds the
// agent's reply back into the model, and repeats until the model addresses one
// of the terminal pseudo-agents or the iteration budget runs out. The loop
// holds no state between runs: the transcript is the entire resumable state.
package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/model"
)

// DefaultMaxIterations caps loop turns per run so a model that never emits a
// terminal directive cannot spin forever.
const DefaultMaxIterations = 10

// DefaultCallTimeout bounds each model or agent call so a hung provider
// cannot stall the loop indefinitely.
const DefaultCallTimeout = 2 * time.Minute

// fallbackMessage is the fixed terminal answer when the iteration budget is
// exhausted.
const fallbackMessage = "I was unable to complete your request. The conversation exceeded the maximum number of iterations or encountered an error."

// genericErrorMessage is the terminal answer when the coordinating model
// itself fails. The loop never surfaces raw model errors to the user.
const genericErrorMessage = "I encountered an internal error while processing your request. Please try again."

// Options configures a Manager.
type Options struct {
	// MaxIterations caps loop turns per run. Zero selects
	// DefaultMaxIterations.
	MaxIterations int

	// CallTimeout bounds each model or agent call. Zero selects
	// DefaultCallTimeout; a negative value disables the per-call deadline.
	CallTimeout time.Duration

	Logger logging.Logger
}

// Manager coordinates worker agents through a language model. A Manager is
// cheap to construct and stateless across calls; a fresh one can be built per
// HTTP request.
type Manager struct {
	model       model.Model
	registry    Registry
	instruction string
	opts        Options
}

// New constructs a Manager over the given coordinating model and worker
// agents.
func New(m model.Model, registry Registry, optFns ...func(o *Options)) *Manager {
	opts := Options{MaxIterations: DefaultMaxIterations}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	opts.Logger = logging.OrDefault(opts.Logger)
	return &Manager{
		model:       m,
		registry:    registry,
		instruction: managerInstruction(registry),
		opts:        opts,
	}
}

// Start runs the loop for a brand-new conversation opened by the given user
// prompt.
func (m *Manager) Start(ctx context.Context, prompt string) core.Outcome {
	history := core.Transcript{}
	history.Append(core.RoleUser, prompt)

	text, err := m.coordinate(ctx, prompt)
	if err != nil {
		m.opts.Logger.Error("coordinating model failed on initial turn", "error", err.Error())
		return core.TerminalOutcome(genericErrorMessage)
	}
	history.Append(core.RoleManager, text)

	return m.runLoop(ctx, history, text)
}

// Resume continues a previously suspended conversation from its serialized
// transcript. When the transcript ends in a Manager turn, that turn's
// directive is executed; when it ends in a user turn (the usual case after a
// user_agent question was answered), the coordinating model is asked for the
// next step first.
func (m *Manager) Resume(ctx context.Context, history core.Transcript) core.Outcome {
	history = history.Clone()

	last, ok := history.Last()
	if !ok {
		return core.TerminalOutcome(genericErrorMessage)
	}

	text := last.Text
	if last.Role != core.RoleManager {
		next, err := m.coordinate(ctx, resumePrompt(history))
		if err != nil {
			m.opts.Logger.Error("coordinating model failed on resume", "error", err.Error())
			return core.TerminalOutcome(genericErrorMessage)
		}
		history.Append(core.RoleManager, next)
		text = next
	}

	return m.runLoop(ctx, history, text)
}

// runLoop drives the dispatch cycle starting from the coordinating model's
// current directive text.
func (m *Manager) runLoop(ctx context.Context, history core.Transcript, current string) core.Outcome {
	for i := 0; i < m.opts.MaxIterations; i++ {
		d := ParseDirective(current)

		switch d.Kind {
		case DirectiveRespond:
			m.opts.Logger.Info("conversation completed",
				"iterations", i+1, "transcript", history.Join())
			return core.TerminalOutcome(d.Instruction)

		case DirectiveAskUser:
			// The question is already on the transcript as the trailing
			// Manager turn; the caller appends the user's answer before
			// resuming.
			m.opts.Logger.Info("awaiting human input", "iterations", i+1)
			return core.AwaitHumanOutcome(history)

		case DirectiveInvalid:
			m.opts.Logger.Warn("unparseable coordinating directive", "text", current)
			return core.TerminalOutcome(fallbackMessage)
		}

		reply := m.dispatch(ctx, d)
		history.Append(d.Agent, reply)

		next, err := m.coordinate(ctx, nextStepPrompt(history, d.Agent, reply))
		if err != nil {
			m.opts.Logger.Error("coordinating model failed mid-loop", "error", err.Error())
			return core.TerminalOutcome(genericErrorMessage)
		}
		history.Append(core.RoleManager, next)
		current = next
	}

	m.opts.Logger.Warn("iteration budget exhausted", "max_iterations", m.opts.MaxIterations)
	return core.TerminalOutcome(fallbackMessage)
}

// dispatch routes a directive to its worker agent. Failures never escape as
// errors; they become textual turns the coordinating model can react to.
func (m *Manager) dispatch(ctx context.Context, d Directive) string {
	a, ok := m.registry.Lookup(d.Agent)
	if !ok {
		m.opts.Logger.Warn("unknown agent requested", "agent", d.Agent)
		return fmt.Sprintf("Unable to find agent: %s. Available agents: %s",
			d.Agent, strings.Join(m.registry.Names(), ", "))
	}

	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	start := time.Now()
	reply, err := a.Chat(callCtx, d.Instruction)
	logging.LogAgentDispatch(m.opts.Logger, a.Name(), time.Since(start), err)
	if err != nil {
		return fmt.Sprintf("Error calling agent %s: %v", a.Name(), err)
	}
	return reply
}

// coordinate asks the coordinating model for its next directive.
func (m *Manager) coordinate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := m.callContext(ctx)
	defer cancel()

	info := m.model.Info()
	start := time.Now()
	resp, err := m.model.Generate(callCtx, model.Request{
		Instruction: m.instruction,
		Prompt:      prompt,
	})
	logging.LogModelCall(m.opts.Logger, info.Provider, info.Name, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (m *Manager) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.opts.CallTimeout)
}
