package model

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// MockModel is a lightweight in-memory Model and Embedder useful for tests
// and examples. Responses can be scripted in order (Enqueue*) or keyed by
// exact prompt (AddResponse); scripted responses take precedence.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []scriptEntry
	responses map[string]string
	requests  []Request
}

type scriptEntry struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted response consumed in FIFO order.
func (m *MockModel) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptEntry{resp: resp})
}

// EnqueueText appends a scripted plain-text response.
func (m *MockModel) EnqueueText(text string) {
	m.Enqueue(Response{Text: text, FinishReason: "stop"})
}

// EnqueueError appends a scripted failure.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptEntry{err: err})
}

// Requests returns a copy of every request seen, in call order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.script) > 0 {
		entry := m.script[0]
		m.script = m.script[1:]
		if entry.err != nil {
			return nil, entry.err
		}
		resp := entry.resp
		return &resp, nil
	}
	if text, ok := m.responses[req.Prompt]; ok {
		return &Response{Text: text, FinishReason: "stop"}, nil
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

// Embed implements Embedder with a deterministic pseudo-embedding derived
// from the input text, good enough for exercising similarity plumbing.
func (m *MockModel) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float32, 8)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>32)) / float32(1<<31)
	}
	return vec, nil
}
