// Package store defines persistence for projects and their embedded
// documents, plus vector similarity search over document embeddings. The
// sqlite subpackage provides the durable implementation; InMemoryStore backs
// tests and ephemeral setups.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/taskhive/taskhive/core"
)

// ErrNotFound is returned when a document or project does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("store: not found")

// Document is a named piece of project content together with its embedding
// vector. Documents are always scoped to a project and an owning user.
type Document struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"doc_name"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project groups documents under an owning user.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"project_name"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentStore persists documents and answers similarity queries over their
// embeddings. SimilaritySearch returns matches ordered most-similar first,
// filtered to score >= threshold and capped at limit; an empty result is not
// an error.
type DocumentStore interface {
	InsertDocument(ctx context.Context, doc Document) (string, error)
	GetDocument(ctx context.Context, docID, userID string) (Document, error)
	ListDocuments(ctx context.Context, projectID, userID string) ([]Document, error)
	UpdateDocumentContent(ctx context.Context, docID, userID, content string, embedding []float32) error
	DeleteDocument(ctx context.Context, docID, userID string) error
	SimilaritySearch(ctx context.Context, queryVec []float32, projectID, userID string, threshold float64, limit int) ([]core.DocumentMatch, error)
}

// ProjectStore persists project records.
type ProjectStore interface {
	CreateProject(ctx context.Context, project Project) (string, error)
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
}

// Store combines document and project persistence.
type Store interface {
	DocumentStore
	ProjectStore
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
