package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.InsertDocument(ctx, store.Document{
		ProjectID: "p-1",
		UserID:    "u-1",
		Name:      "notes",
		Content:   "hello sqlite",
		Embedding: []float32{0.25, -0.5, 1},
	})
	require.NoError(t, err)

	doc, err := s.GetDocument(ctx, id, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Name)
	assert.Equal(t, "hello sqlite", doc.Content)
	assert.Equal(t, []float32{0.25, -0.5, 1}, doc.Embedding)
	assert.False(t, doc.CreatedAt.IsZero())

	_, err = s.GetDocument(ctx, id, "someone-else")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateAndDeleteDocument(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.InsertDocument(ctx, store.Document{
		ProjectID: "p-1", UserID: "u-1", Name: "notes", Content: "v1", Embedding: []float32{1},
	})
	require.NoError(t, err)

	require.NoError(t, s.UpdateDocumentContent(ctx, id, "u-1", "v2", []float32{2}))
	doc, err := s.GetDocument(ctx, id, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Content)
	assert.Equal(t, []float32{2}, doc.Embedding)

	assert.ErrorIs(t, s.UpdateDocumentContent(ctx, id, "u-2", "x", nil), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteDocument(ctx, "missing", "u-1"), store.ErrNotFound)

	require.NoError(t, s.DeleteDocument(ctx, id, "u-1"))
	_, err = s.GetDocument(ctx, id, "u-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSimilaritySearchOrdering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	insert := func(name string, vec []float32) {
		t.Helper()
		_, err := s.InsertDocument(ctx, store.Document{
			ProjectID: "p-1", UserID: "u-1", Name: name, Content: name, Embedding: vec,
		})
		require.NoError(t, err)
	}
	insert("identical", []float32{1, 0})
	insert("close", []float32{0.8, 0.2})
	insert("orthogonal", []float32{0, 1})
	// Same project, different user: never visible.
	_, err := s.InsertDocument(ctx, store.Document{
		ProjectID: "p-1", UserID: "u-2", Name: "foreign", Content: "foreign", Embedding: []float32{1, 0},
	})
	require.NoError(t, err)

	matches, err := s.SimilaritySearch(ctx, []float32{1, 0}, "p-1", "u-1", 0.7, 3)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "identical", matches[0].DocName)
	assert.Equal(t, "close", matches[1].DocName)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	matches, err = s.SimilaritySearch(ctx, []float32{1, 0}, "p-1", "u-1", 0.0, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	projectID, err := s.CreateProject(ctx, store.Project{UserID: "u-1", Name: "Roadmap"})
	require.NoError(t, err)

	docID, err := s.InsertDocument(ctx, store.Document{
		ProjectID: projectID, UserID: "u-1", Name: "plan", Content: "plan", Embedding: []float32{1},
	})
	require.NoError(t, err)

	projects, err := s.ListProjects(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Roadmap", projects[0].Name)

	require.NoError(t, s.DeleteProject(ctx, projectID, "u-1"))
	_, err = s.GetDocument(ctx, docID, "u-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteProject(ctx, projectID, "u-1"), store.ErrNotFound)
}
