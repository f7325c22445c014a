package manager

import (
	"strings"

	"github.com/taskhive/taskhive/agent"
)

// Registry resolves agent names parsed out of coordinating-model output to
// worker agents. Lookups are case-insensitive; registration order is
// preserved so rosters and error messages stay deterministic.
type Registry struct {
	names  []string
	agents map[string]agent.Agent
}

// NewRegistry builds a registry from the given agents. Later registrations
// with the same (case-folded) name replace earlier ones.
func NewRegistry(agents ...agent.Agent) Registry {
	r := Registry{agents: make(map[string]agent.Agent, len(agents))}
	for _, a := range agents {
		key := strings.ToLower(a.Name())
		if _, exists := r.agents[key]; !exists {
			r.names = append(r.names, key)
		}
		r.agents[key] = a
	}
	return r
}

// Lookup resolves a parsed agent name, ignoring case.
func (r Registry) Lookup(name string) (agent.Agent, bool) {
	a, ok := r.agents[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Names returns the registered agent names in registration order.
func (r Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Agents returns the registered agents in registration order.
func (r Registry) Agents() []agent.Agent {
	out := make([]agent.Agent, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.agents[name])
	}
	return out
}
