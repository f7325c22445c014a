package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmbeddingUnsupported is returned by providers without an embedding API.
var ErrEmbeddingUnsupported = errors.New("model: embeddings not supported by this provider")

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider
// branching.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"` // JSON object of arguments
}

// ArgsMap decodes the call arguments into a generic map.
func (tc ToolCall) ArgsMap() (map[string]any, error) {
	args := map[string]any{}
	if len(tc.Arguments) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(tc.Arguments, &args); err != nil {
		return nil, fmt.Errorf("decode tool call arguments for %s: %w", tc.Name, err)
	}
	return args, nil
}

// ToolResult carries the locally computed result of a previously returned
// tool call back to the model.
type ToolResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input.
//
// ToolCall and ToolResult are set together on a follow-up call: the agent
// executed the tool the model asked for and now supplies the outcome so the
// model can produce its final natural-language answer.
type Request struct {
	Instruction string           `json:"instruction"` // system instruction
	Prompt      string           `json:"prompt"`      // user content
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolCall    *ToolCall        `json:"tool_call,omitempty"`
	ToolResult  *ToolResult      `json:"tool_result,omitempty"`
}

// Response is the completed output of one model call. ToolCall is non-nil
// when the model elected to invoke a declared tool instead of answering in
// text.
type Response struct {
	Text         string    `json:"text"`
	ToolCall     *ToolCall `json:"tool_call,omitempty"`
	FinishReason string    `json:"finish_reason,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "gemini", "openai", "anthropic", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Embedder turns text into a dense vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
