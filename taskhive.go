// Package taskhive provides a high-level façade over the manager loop and its
// collaborators (model providers, agents, document store, retrieval engine and
// logging) enabling rapid construction of a conversational task assistant.
// Most applications interact with this package by:
//  1. Creating a Taskhive via New() with a coordinating model (optionally
//     overriding the default in-memory store and no-op logger)
//  2. Starting a conversation with StartChat, persisting the returned
//     transcript whenever the loop suspends for human input
//  3. Resuming with ContinueChat once the user has answered
//
// The façade builds a fresh, user-scoped Manager per call; all loop state
// lives in the transcript, so instances are safe to share across requests.
// All defaults are safe for local development and testing; production
// deployments typically supply the sqlite store and a structured logger.
package taskhive

import (
	"context"

	"github.com/taskhive/taskhive/agent"
	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/manager"
	"github.com/taskhive/taskhive/model"
	"github.com/taskhive/taskhive/retrieval"
	"github.com/taskhive/taskhive/store"
)

// Options configures the Taskhive instance.
type Options struct {
	// Embedder generates document and query embeddings. When nil and the
	// coordinating model implements model.Embedder, that is used.
	Embedder model.Embedder

	// Store persists projects and documents (defaults to in-memory).
	Store store.Store

	// MaxIterations caps orchestration loop turns per run.
	MaxIterations int

	// SimilarityThreshold, MaxResults and MaxContentLength tune document
	// retrieval. Zero values select the retrieval package defaults.
	SimilarityThreshold float64
	MaxResults          int
	MaxContentLength    int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Taskhive is the high-level façade aggregating the coordinating model, the
// worker agents and their backing services.
type Taskhive struct {
	model model.Model
	opts  Options
}

// New creates a new Taskhive instance over the given coordinating model with
// optional overrides. Any unset service is initialized with an in-memory
// implementation.
func New(m model.Model, optFns ...func(o *Options)) *Taskhive {
	opts := Options{
		Store:         store.NewInMemoryStore(),
		MaxIterations: manager.DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Embedder == nil {
		if emb, ok := m.(model.Embedder); ok {
			opts.Embedder = emb
		}
	}
	opts.Logger = logging.OrDefault(opts.Logger)

	return &Taskhive{model: m, opts: opts}
}

// Store exposes the configured document and project store for the CRUD
// surface.
func (t *Taskhive) Store() store.Store { return t.opts.Store }

// Embedder exposes the configured embedder (nil when the provider has none).
func (t *Taskhive) Embedder() model.Embedder { return t.opts.Embedder }

// ManagerFor builds a Manager whose agents are scoped to the given user
// context. Construction is cheap; a fresh one per request is the intended
// usage.
func (t *Taskhive) ManagerFor(userCtx core.UserContext) *manager.Manager {
	engine := retrieval.NewEngine(t.opts.Embedder, t.opts.Store, func(o *retrieval.Options) {
		if t.opts.SimilarityThreshold > 0 {
			o.Threshold = t.opts.SimilarityThreshold
		}
		if t.opts.MaxResults > 0 {
			o.MaxResults = t.opts.MaxResults
		}
		if t.opts.MaxContentLength > 0 {
			o.MaxContentLength = t.opts.MaxContentLength
		}
		o.Logger = t.opts.Logger
	})

	registry := manager.NewRegistry(
		agent.NewSlackAgent(t.model, func(o *agent.SlackOptions) {
			o.Logger = t.opts.Logger
		}),
		agent.NewProjectAgent(t.model, t.opts.Embedder, engine, t.opts.Store, userCtx, func(o *agent.ProjectOptions) {
			o.Logger = t.opts.Logger
		}),
	)

	return manager.New(t.model, registry, func(o *manager.Options) {
		o.MaxIterations = t.opts.MaxIterations
		o.Logger = t.opts.Logger
	})
}

// StartChat opens a new conversation for the user and runs the loop until it
// terminates or suspends for human input.
func (t *Taskhive) StartChat(ctx context.Context, userCtx core.UserContext, prompt string) core.Outcome {
	return t.ManagerFor(userCtx).Start(ctx, prompt)
}

// ContinueChat resumes a suspended conversation. The caller appends the
// user's newest message to the transcript before calling.
func (t *Taskhive) ContinueChat(ctx context.Context, userCtx core.UserContext, history core.Transcript) core.Outcome {
	return t.ManagerFor(userCtx).Resume(ctx, history)
}
