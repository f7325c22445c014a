// Package sqlite implements store.Store on SQLite via the pure-Go
// modernc.org/sqlite driver. Embeddings are stored as JSON arrays alongside
// the document row; similarity queries decode the vectors and rank by cosine
// similarity in process, which is plenty for the per-project document counts
// this system serves.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/store"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	project_name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS docs (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	doc_name TEXT NOT NULL,
	content TEXT NOT NULL,
	embedding TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_docs_project_user ON docs(project_id, user_id);
CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
`

// Store is a SQLite backed store.Store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// InsertDocument stores a document, assigning an ID when none is set.
func (s *Store) InsertDocument(ctx context.Context, doc store.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = core.NewID()
	}
	embedding, err := json.Marshal(doc.Embedding)
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO docs (id, project_id, user_id, doc_name, content, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.ProjectID, doc.UserID, doc.Name, doc.Content, string(embedding), now, now)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return doc.ID, nil
}

// GetDocument returns a document visible to the user.
func (s *Store) GetDocument(ctx context.Context, docID, userID string) (store.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, user_id, doc_name, content, embedding, created_at, updated_at
		 FROM docs WHERE id = ? AND user_id = ?`, docID, userID)
	return scanDocument(row)
}

// ListDocuments returns every document in a project owned by the user.
func (s *Store) ListDocuments(ctx context.Context, projectID, userID string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, user_id, doc_name, content, embedding, created_at, updated_at
		 FROM docs WHERE project_id = ? AND user_id = ? ORDER BY created_at`, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateDocumentContent replaces a document's content and embedding.
func (s *Store) UpdateDocumentContent(ctx context.Context, docID, userID, content string, embedding []float32) error {
	encoded, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE docs SET content = ?, embedding = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		content, string(encoded), time.Now().UTC(), docID, userID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRows(res)
}

// DeleteDocument removes a document owned by the user.
func (s *Store) DeleteDocument(ctx context.Context, docID, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM docs WHERE id = ? AND user_id = ?`, docID, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRows(res)
}

// SimilaritySearch loads the project's embeddings and ranks them by cosine
// similarity against the query vector.
func (s *Store) SimilaritySearch(ctx context.Context, queryVec []float32, projectID, userID string, threshold float64, limit int) ([]core.DocumentMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_name, content, embedding FROM docs WHERE project_id = ? AND user_id = ?`,
		projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	matches := []core.DocumentMatch{}
	for rows.Next() {
		var (
			id, name, content, encoded string
		)
		if err := rows.Scan(&id, &name, &content, &encoded); err != nil {
			return nil, fmt.Errorf("similarity search: %w", err)
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(encoded), &embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for document %s: %w", id, err)
		}
		score := store.CosineSimilarity(queryVec, embedding)
		if score < threshold {
			continue
		}
		matches = append(matches, core.DocumentMatch{DocID: id, DocName: name, Content: content, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// CreateProject stores a project, assigning an ID when none is set.
func (s *Store) CreateProject(ctx context.Context, project store.Project) (string, error) {
	if project.ID == "" {
		project.ID = core.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, project_name, created_at) VALUES (?, ?, ?, ?)`,
		project.ID, project.UserID, project.Name, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("create project: %w", err)
	}
	return project.ID, nil
}

// ListProjects returns every project owned by the user.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]store.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, project_name, created_at FROM projects WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []store.Project
	for rows.Next() {
		var p store.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and its documents.
func (s *Store) DeleteProject(ctx context.Context, projectID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := requireRows(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM docs WHERE project_id = ? AND user_id = ?`, projectID, userID); err != nil {
		return fmt.Errorf("delete project documents: %w", err)
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (store.Document, error) {
	var (
		doc     store.Document
		encoded string
	)
	err := row.Scan(&doc.ID, &doc.ProjectID, &doc.UserID, &doc.Name, &doc.Content, &encoded, &doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("scan document: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &doc.Embedding); err != nil {
		return store.Document{}, fmt.Errorf("decode embedding for document %s: %w", doc.ID, err)
	}
	return doc, nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
