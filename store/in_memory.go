package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskhive/taskhive/core"
)

// InMemoryStore is a volatile Store implementation keeping projects and
// documents in process-local maps. It is safe for concurrent access and best
// suited for tests or ephemeral demo servers. Returned values are copies to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	projects map[string]Project
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		docs:     make(map[string]Document),
		projects: make(map[string]Project),
	}
}

// InsertDocument stores a document, assigning an ID when none is set.
func (s *InMemoryStore) InsertDocument(_ context.Context, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = core.NewID()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	s.docs[doc.ID] = cloneDocument(doc)
	return doc.ID, nil
}

// GetDocument returns a document visible to the user.
func (s *InMemoryStore) GetDocument(_ context.Context, docID, userID string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

// ListDocuments returns every document in a project owned by the user.
func (s *InMemoryStore) ListDocuments(_ context.Context, projectID, userID string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, doc := range s.docs {
		if doc.ProjectID == projectID && doc.UserID == userID {
			out = append(out, cloneDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateDocumentContent replaces a document's content and embedding.
func (s *InMemoryStore) UpdateDocumentContent(_ context.Context, docID, userID, content string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	doc.Content = content
	doc.Embedding = append([]float32(nil), embedding...)
	doc.UpdatedAt = time.Now().UTC()
	s.docs[docID] = doc
	return nil
}

// DeleteDocument removes a document owned by the user.
func (s *InMemoryStore) DeleteDocument(_ context.Context, docID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(s.docs, docID)
	return nil
}

// SimilaritySearch scores every document in scope against the query vector.
func (s *InMemoryStore) SimilaritySearch(_ context.Context, queryVec []float32, projectID, userID string, threshold float64, limit int) ([]core.DocumentMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []core.DocumentMatch{}
	for _, doc := range s.docs {
		if doc.ProjectID != projectID || doc.UserID != userID {
			continue
		}
		score := CosineSimilarity(queryVec, doc.Embedding)
		if score < threshold {
			continue
		}
		matches = append(matches, core.DocumentMatch{
			DocID:   doc.ID,
			DocName: doc.Name,
			Content: doc.Content,
			Score:   score,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// CreateProject stores a project, assigning an ID when none is set.
func (s *InMemoryStore) CreateProject(_ context.Context, project Project) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project.ID == "" {
		project.ID = core.NewID()
	}
	project.CreatedAt = time.Now().UTC()
	s.projects[project.ID] = project
	return project.ID, nil
}

// ListProjects returns every project owned by the user.
func (s *InMemoryStore) ListProjects(_ context.Context, userID string) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Project
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteProject removes a project and its documents.
func (s *InMemoryStore) DeleteProject(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok || p.UserID != userID {
		return ErrNotFound
	}
	delete(s.projects, projectID)
	for id, doc := range s.docs {
		if doc.ProjectID == projectID {
			delete(s.docs, id)
		}
	}
	return nil
}

func cloneDocument(doc Document) Document {
	doc.Embedding = append([]float32(nil), doc.Embedding...)
	return doc
}
