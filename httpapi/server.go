// Package httpapi exposes the chat loop and the project/document store over
// HTTP. Handlers are thin: they authenticate, decode, delegate to the façade
// or the store, and encode. Loop-level failures never surface as HTTP errors;
// the manager maps them to terminal outcomes and handlers return those with
// status 200.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskhive/taskhive"
	"github.com/taskhive/taskhive/auth"
	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/logging"
	"github.com/taskhive/taskhive/store"
)

// Server wires HTTP routes to the Taskhive façade.
type Server struct {
	hive   *taskhive.Taskhive
	authn  auth.Authenticator
	logger logging.Logger
	mux    *http.ServeMux
}

// Options configures a Server.
type Options struct {
	Logger logging.Logger
}

// NewServer builds the HTTP surface over a Taskhive instance.
func NewServer(hive *taskhive.Taskhive, authn auth.Authenticator, optFns ...func(o *Options)) *Server {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		hive:   hive,
		authn:  authn,
		logger: logging.OrDefault(opts.Logger),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /chat/start", s.requireAuth(s.handleChatStart))
	s.mux.HandleFunc("POST /chat/continue", s.requireAuth(s.handleChatContinue))

	s.mux.HandleFunc("POST /projects", s.requireAuth(s.handleCreateProject))
	s.mux.HandleFunc("GET /projects", s.requireAuth(s.handleListProjects))
	s.mux.HandleFunc("DELETE /projects/{id}", s.requireAuth(s.handleDeleteProject))
	s.mux.HandleFunc("GET /projects/{id}/documents", s.requireAuth(s.handleListDocuments))

	s.mux.HandleFunc("POST /documents", s.requireAuth(s.handleCreateDocument))
	s.mux.HandleFunc("GET /documents/{id}", s.requireAuth(s.handleGetDocument))
	s.mux.HandleFunc("PUT /documents/{id}", s.requireAuth(s.handleUpdateDocument))
	s.mux.HandleFunc("DELETE /documents/{id}", s.requireAuth(s.handleDeleteDocument))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// authedHandler is an http.HandlerFunc that has passed authentication.
type authedHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// requireAuth resolves the bearer token before invoking the handler.
func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := s.authn.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Warn("authentication failed", "error", err.Error())
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		next(w, r, id)
	}
}

type chatStartRequest struct {
	Prompt    string `json:"prompt"`
	ProjectID string `json:"project_id,omitempty"`
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req chatStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	userCtx := core.UserContext{UserID: id.UserID, ProjectID: req.ProjectID}
	outcome := s.hive.StartChat(r.Context(), userCtx, req.Prompt)
	writeJSON(w, http.StatusOK, outcome)
}

type chatContinueRequest struct {
	Prompt              string   `json:"prompt,omitempty"`
	ConversationHistory []string `json:"conversation_history"`
	ProjectID           string   `json:"project_id,omitempty"`
}

func (s *Server) handleChatContinue(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req chatContinueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.ConversationHistory) == 0 {
		writeError(w, http.StatusBadRequest, "conversation_history is required")
		return
	}

	history := core.ParseTranscript(req.ConversationHistory)
	if req.Prompt != "" {
		history.Append(core.RoleUser, req.Prompt)
	}

	userCtx := core.UserContext{UserID: id.UserID, ProjectID: req.ProjectID}
	outcome := s.hive.ContinueChat(r.Context(), userCtx, history)
	writeJSON(w, http.StatusOK, outcome)
}

type createProjectRequest struct {
	ProjectName string `json:"project_name"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProjectName == "" {
		writeError(w, http.StatusBadRequest, "project_name is required")
		return
	}

	projectID, err := s.hive.Store().CreateProject(r.Context(), store.Project{
		UserID: id.UserID,
		Name:   req.ProjectName,
	})
	if err != nil {
		s.storeError(w, err, "create project")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": projectID, "project_name": req.ProjectName})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	projects, err := s.hive.Store().ListProjects(r.Context(), id.UserID)
	if err != nil {
		s.storeError(w, err, "list projects")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if err := s.hive.Store().DeleteProject(r.Context(), r.PathValue("id"), id.UserID); err != nil {
		s.storeError(w, err, "delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	docs, err := s.hive.Store().ListDocuments(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		s.storeError(w, err, "list documents")
		return
	}
	// Embeddings are an internal detail; strip them from listings.
	for i := range docs {
		docs[i].Embedding = nil
	}
	writeJSON(w, http.StatusOK, docs)
}

type createDocumentRequest struct {
	ProjectID string `json:"project_id"`
	DocName   string `json:"doc_name"`
	Content   string `json:"content"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProjectID == "" || req.DocName == "" {
		writeError(w, http.StatusBadRequest, "project_id and doc_name are required")
		return
	}

	embedding, err := s.embed(r, req.Content)
	if err != nil {
		s.logger.Error("embed document content", "error", err.Error())
		writeError(w, http.StatusBadGateway, "failed to embed document content")
		return
	}

	docID, err := s.hive.Store().InsertDocument(r.Context(), store.Document{
		ProjectID: req.ProjectID,
		UserID:    id.UserID,
		Name:      req.DocName,
		Content:   req.Content,
		Embedding: embedding,
	})
	if err != nil {
		s.storeError(w, err, "create document")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": docID, "doc_name": req.DocName})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	doc, err := s.hive.Store().GetDocument(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		s.storeError(w, err, "get document")
		return
	}
	doc.Embedding = nil
	writeJSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req updateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	embedding, err := s.embed(r, req.Content)
	if err != nil {
		s.logger.Error("embed document content", "error", err.Error())
		writeError(w, http.StatusBadGateway, "failed to embed document content")
		return
	}

	if err := s.hive.Store().UpdateDocumentContent(r.Context(), r.PathValue("id"), id.UserID, req.Content, embedding); err != nil {
		s.storeError(w, err, "update document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if err := s.hive.Store().DeleteDocument(r.Context(), r.PathValue("id"), id.UserID); err != nil {
		s.storeError(w, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// embed generates an embedding for document content, tolerating a missing
// embedder (documents stay searchable only once an embedder is configured).
func (s *Server) embed(r *http.Request, content string) ([]float32, error) {
	emb := s.hive.Embedder()
	if emb == nil {
		return nil, nil
	}
	return emb.Embed(r.Context(), content)
}

func (s *Server) storeError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error("store operation failed", "op", op, "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
