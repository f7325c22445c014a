// Package retrieval implements similarity search over embedded project
// documents: embed the query, run a vector similarity query against the
// project's documents, keep matches above the threshold and truncate long
// content before it reaches a model prompt.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/model"
	"github.com/taskhive/taskhive/store"
)

// Defaults for retrieval tuning. All are overridable via Options.
const (
	DefaultThreshold        = 0.7
	DefaultMaxResults       = 3
	DefaultMaxContentLength = 2000
)

// Options configures an Engine.
type Options struct {
	// Threshold is the minimum similarity score a match must reach.
	Threshold float64
	// MaxResults caps the number of returned matches.
	MaxResults int
	// MaxContentLength caps match content before it is surfaced; longer
	// content is truncated with a trailing ellipsis to protect downstream
	// prompt-size limits.
	MaxContentLength int
	// Logger receives search telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Engine performs embedding-based document retrieval.
type Engine struct {
	embedder model.Embedder
	docs     store.DocumentStore
	opts     Options
}

// NewEngine constructs an Engine over the given embedder and document store.
func NewEngine(embedder model.Embedder, docs store.DocumentStore, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Threshold:        DefaultThreshold,
		MaxResults:       DefaultMaxResults,
		MaxContentLength: DefaultMaxContentLength,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = logging.OrDefault(opts.Logger)
	return &Engine{embedder: embedder, docs: docs, opts: opts}
}

// Search returns the documents in the project most similar to the query,
// ordered most-similar first. An empty result means nothing cleared the
// threshold; the caller owns the user-facing "nothing found" message.
// Embedding and datastore failures are surfaced as distinguishable errors,
// never as a silent empty result.
func (e *Engine) Search(ctx context.Context, query, projectID, userID string) ([]core.DocumentMatch, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	matches, err := e.docs.SimilaritySearch(ctx, queryVec, projectID, userID, e.opts.Threshold, e.opts.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("document similarity query: %w", err)
	}

	// The store contract already orders and filters; enforce it here too so a
	// loose implementation cannot leak oversized or under-threshold content
	// into a prompt.
	kept := matches[:0]
	for _, m := range matches {
		if m.Score < e.opts.Threshold {
			continue
		}
		m.Content = truncate(m.Content, e.opts.MaxContentLength)
		kept = append(kept, m)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if e.opts.MaxResults > 0 && len(kept) > e.opts.MaxResults {
		kept = kept[:e.opts.MaxResults]
	}

	e.opts.Logger.Info("document search completed", "project_id", projectID, "matches", len(kept))
	return kept, nil
}

// truncate caps content at maxLen bytes, backing off to the previous rune
// boundary so a multi-byte character is never split.
func truncate(content string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	for maxLen > 0 && !utf8.RuneStart(content[maxLen]) {
		maxLen--
	}
	return content[:maxLen] + "..."
}
