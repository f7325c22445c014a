package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive"
	"github.com/taskhive/taskhive/auth"
	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/model"
	"github.com/taskhive/taskhive/store"
)

const testToken = "dev-token"

func newTestServer(t *testing.T, m *model.MockModel) (*Server, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	hive := taskhive.New(m, func(o *taskhive.Options) {
		o.Store = st
	})
	authn := auth.NewStaticAuthenticator(map[string]auth.Identity{
		testToken: {UserID: "user-1", Email: "dev@example.com"},
	})
	return NewServer(hive, authn), st
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestChatStartTerminal(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueText("response_agent: 4")
	s, _ := newTestServer(t, m)

	rec := doRequest(t, s, http.MethodPost, "/chat/start", map[string]string{"prompt": "What is 2+2?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.False(t, outcome.WaitForHuman)
	assert.Equal(t, "4", outcome.Response)
}

func TestChatStartAcceptsWireShape(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueText("response_agent: 4")
	s, _ := newTestServer(t, m)

	// The exact field set a client sends: prompt plus project_id.
	req := httptest.NewRequest(http.MethodPost, "/chat/start",
		bytes.NewBufferString(`{"prompt":"What is 2+2?","project_id":"p-1"}`))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.False(t, outcome.WaitForHuman)
	assert.Equal(t, "4", outcome.Response)
}

func TestChatStartAwaitsHuman(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueText("user_agent: Which channel?")
	s, _ := newTestServer(t, m)

	rec := doRequest(t, s, http.MethodPost, "/chat/start", map[string]string{"prompt": "Post an update"})

	require.Equal(t, http.StatusOK, rec.Code)

	var wire struct {
		WaitForHuman        bool     `json:"wait_for_human"`
		ConversationHistory []string `json:"conversation_history"`
		ModelResponse       string   `json:"model_response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wire))
	assert.True(t, wire.WaitForHuman)
	assert.Empty(t, wire.ModelResponse)
	require.Len(t, wire.ConversationHistory, 2)
	assert.Equal(t, "User: Post an update", wire.ConversationHistory[0])
	assert.Equal(t, "Manager: user_agent: Which channel?", wire.ConversationHistory[1])
}

func TestChatStartModelFailureStillReturnsOutcome(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueError(errors.New("provider down"))
	s, _ := newTestServer(t, m)

	rec := doRequest(t, s, http.MethodPost, "/chat/start", map[string]string{"prompt": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.False(t, outcome.WaitForHuman)
	assert.NotEmpty(t, outcome.Response)
	assert.NotContains(t, outcome.Response, "provider down")
}

func TestChatContinueAppendsUserMessage(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	m.EnqueueText("response_agent: Posted to #general.")
	s, _ := newTestServer(t, m)

	rec := doRequest(t, s, http.MethodPost, "/chat/continue", map[string]any{
		"prompt": "#general",
		"conversation_history": []string{
			"User: Post an update",
			"Manager: user_agent: Which channel?",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, "Posted to #general.", outcome.Response)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "User: #general")
}

func TestChatContinueRequiresHistory(t *testing.T) {
	s, _ := newTestServer(t, model.NewMockModel("test-model", "mock"))

	rec := doRequest(t, s, http.MethodPost, "/chat/continue", map[string]any{"prompt": "hi"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStartRequiresPrompt(t *testing.T) {
	s, _ := newTestServer(t, model.NewMockModel("test-model", "mock"))

	rec := doRequest(t, s, http.MethodPost, "/chat/start", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t, model.NewMockModel("test-model", "mock"))

	req := httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewBufferString(`{"prompt":"hi"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewBufferString(`{"prompt":"hi"}`))
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectAndDocumentCRUD(t *testing.T) {
	s, _ := newTestServer(t, model.NewMockModel("test-model", "mock"))

	// Create a project.
	rec := doRequest(t, s, http.MethodPost, "/projects", map[string]string{"project_name": "Roadmap"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	projectID := created["id"]
	require.NotEmpty(t, projectID)

	// It shows up in listings.
	rec = doRequest(t, s, http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []store.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "Roadmap", projects[0].Name)

	// Create a document in the project.
	rec = doRequest(t, s, http.MethodPost, "/documents", map[string]string{
		"project_id": projectID,
		"doc_name":   "Q3 plan",
		"content":    "Ship the onboarding revamp.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var docCreated map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docCreated))
	docID := docCreated["id"]
	require.NotEmpty(t, docID)

	// Fetch it back without the embedding.
	rec = doRequest(t, s, http.MethodGet, "/documents/"+docID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc store.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Q3 plan", doc.Name)
	assert.Equal(t, "Ship the onboarding revamp.", doc.Content)
	assert.Empty(t, doc.Embedding)

	// Update the content.
	rec = doRequest(t, s, http.MethodPut, "/documents/"+docID, map[string]string{
		"content": "Ship the onboarding revamp and the billing migration.",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/projects/"+projectID+"/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []store.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "billing migration")

	// Delete and confirm it is gone.
	rec = doRequest(t, s, http.MethodDelete, "/documents/"+docID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/documents/"+docID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentsScopedToUser(t *testing.T) {
	m := model.NewMockModel("test-model", "mock")
	st := store.NewInMemoryStore()
	hive := taskhive.New(m, func(o *taskhive.Options) { o.Store = st })
	authn := auth.NewStaticAuthenticator(map[string]auth.Identity{
		testToken: {UserID: "user-1"},
	})
	s := NewServer(hive, authn)

	// Seed a document owned by another user directly in the store.
	docID, err := st.InsertDocument(context.Background(), store.Document{
		ProjectID: "p-1", UserID: "user-2", Name: "secret", Content: "classified",
	})
	require.NoError(t, err)

	rec := doRequest(t, s, http.MethodGet, "/documents/"+docID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
