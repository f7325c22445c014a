// Package model defines the provider-neutral language model contract the
// orchestration loop and worker agents depend on: a system instruction plus a
// prompt in, generated text or a structured tool-invocation request out, and
// an optional follow-up call that supplies a prior tool call with its result
// to obtain a final answer.
//
// Provider adapters live in the subpackages gemini, openai and anthropic.
// Embedding generation is a separate capability (Embedder) because not every
// provider supports it.
package model
