package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	id, err := s.InsertDocument(ctx, Document{
		ProjectID: "p-1",
		UserID:    "u-1",
		Name:      "notes",
		Content:   "hello",
		Embedding: []float32{1, 0},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.GetDocument(ctx, id, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Name)
	assert.Equal(t, "hello", doc.Content)
	assert.False(t, doc.CreatedAt.IsZero())

	// Another user cannot see it.
	_, err = s.GetDocument(ctx, id, "u-2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpdateDocumentContent(ctx, id, "u-1", "updated", []float32{0, 1}))
	doc, err = s.GetDocument(ctx, id, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", doc.Content)
	assert.Equal(t, []float32{0, 1}, doc.Embedding)

	require.NoError(t, s.DeleteDocument(ctx, id, "u-1"))
	_, err = s.GetDocument(ctx, id, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryListDocumentsScoped(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_, err := s.InsertDocument(ctx, Document{ProjectID: "p-1", UserID: "u-1", Name: "a"})
	require.NoError(t, err)
	_, err = s.InsertDocument(ctx, Document{ProjectID: "p-1", UserID: "u-2", Name: "b"})
	require.NoError(t, err)
	_, err = s.InsertDocument(ctx, Document{ProjectID: "p-2", UserID: "u-1", Name: "c"})
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx, "p-1", "u-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].Name)
}

func TestInMemorySimilaritySearch(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	insert := func(name string, vec []float32) {
		t.Helper()
		_, err := s.InsertDocument(ctx, Document{
			ProjectID: "p-1", UserID: "u-1", Name: name, Content: name + " content", Embedding: vec,
		})
		require.NoError(t, err)
	}
	insert("identical", []float32{1, 0})
	insert("close", []float32{0.9, 0.1})
	insert("orthogonal", []float32{0, 1})

	matches, err := s.SimilaritySearch(ctx, []float32{1, 0}, "p-1", "u-1", 0.7, 3)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "identical", matches[0].DocName)
	assert.Equal(t, "close", matches[1].DocName)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)

	// The limit caps the result even when more documents clear the threshold.
	matches, err = s.SimilaritySearch(ctx, []float32{1, 0}, "p-1", "u-1", 0.0, 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	// Other projects and users are never searched.
	matches, err = s.SimilaritySearch(ctx, []float32{1, 0}, "p-2", "u-1", 0.0, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInMemoryProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	projectID, err := s.CreateProject(ctx, Project{UserID: "u-1", Name: "Roadmap"})
	require.NoError(t, err)

	docID, err := s.InsertDocument(ctx, Document{ProjectID: projectID, UserID: "u-1", Name: "plan"})
	require.NoError(t, err)

	projects, err := s.ListProjects(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Roadmap", projects[0].Name)

	// Deleting the project removes its documents too.
	require.NoError(t, s.DeleteProject(ctx, projectID, "u-1"))
	_, err = s.GetDocument(ctx, docID, "u-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteProject(ctx, projectID, "u-1"), ErrNotFound)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs yield 0 instead of NaN.
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
