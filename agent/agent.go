// Package agent implements the worker agents the manager loop dispatches to.
// Every variant exposes the single Chat operation; internal tool failures are
// rendered as textual results so the orchestration loop can keep running, and
// any error an agent does return is converted to a textual error turn at the
// manager boundary rather than propagated.
package agent

import (
	"context"
	"fmt"
)

// Agent is the worker agent contract: one role-specialized chat operation.
//
// Chat returns the agent's textual reply to the manager's instruction. An
// error return is permitted for genuinely unrecoverable failures (for example
// the underlying model call failing); the manager never lets such an error
// escape the loop.
type Agent interface {
	// Name returns the unique registry key for this agent (snake_case).
	Name() string

	// Description is a one-line capability summary surfaced to the
	// coordinating model in its roster.
	Description() string

	// Chat handles one instruction and returns the agent's reply.
	Chat(ctx context.Context, prompt string) (string, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
