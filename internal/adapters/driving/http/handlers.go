package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// uploadFormOverhead leaves room for multipart boundaries and headers
const uploadFormOverhead = 1 << 20

// defaultRecentQueries is the page size for GET /queries without a limit
const defaultRecentQueries = 10

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// MessageResponse carries a human readable confirmation
// @Description Confirmation message
type MessageResponse struct {
	Message string `json:"message" example:"Document deleted successfully"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports the state of each backing service
// @Description Readiness status
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// AskRequest submits a question
// @Description Question submission
type AskRequest struct {
	Question string `json:"question" example:"What does the report say about revenue?"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings storage, queue and lock backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for name, p := range s.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// handleSwaggerDoc serves the registered OpenAPI document
func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// Auth endpoints

// handleLogin godoc
// @Summary      Operator login
// @Description  Authenticate with username and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      404      {object}  ErrorResponse  "Authentication disabled"
// @Router       /api/v1/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusNotFound, "authentication is disabled")
		return
	}

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.writeServiceError(w, err, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Document endpoints

// handleListDocuments godoc
// @Summary      List documents
// @Description  Returns every uploaded document, most recent first
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Document
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /api/v1/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch documents")
		return
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleUploadDocument godoc
// @Summary      Upload a document
// @Description  Uploads a pdf, csv or txt file and schedules it for indexing
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Document to index"
// @Success      201   {object}  domain.Document
// @Failure      400   {object}  ErrorResponse  "Missing file or unsupported type"
// @Failure      413   {object}  ErrorResponse  "File too large"
// @Failure      503   {object}  ErrorResponse  "Queue unavailable"
// @Router       /api/v1/documents [post]
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+uploadFormOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	doc, err := s.docService.Upload(r.Context(), header.Filename, data)
	if err != nil {
		s.writeServiceError(w, err, "failed to upload document")
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// handleGetDocument godoc
// @Summary      Get document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /api/v1/documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Removes a document and all of its chunks
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /api/v1/documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.docService.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err, "failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Document deleted successfully"})
}

// handleGetDocumentChunks godoc
// @Summary      Get document chunks
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {array}   domain.Chunk
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /api/v1/documents/{id}/chunks [get]
func (s *Server) handleGetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := s.docService.GetChunks(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch chunks")
		return
	}
	if chunks == nil {
		chunks = []*domain.Chunk{}
	}
	writeJSON(w, http.StatusOK, chunks)
}

// handleListChunks godoc
// @Summary      Chunk debug view
// @Description  Lists every stored chunk with a content preview and embedding info
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ChunkListing
// @Router       /api/v1/chunks [get]
func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	listing, err := s.docService.ListChunks(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch chunks")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// Query endpoints

// handleAsk godoc
// @Summary      Ask a question
// @Description  Stores the question and schedules it for answering
// @Tags         Queries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      AskRequest  true  "Question"
// @Success      201      {object}  domain.Query
// @Failure      400      {object}  ErrorResponse  "Missing question"
// @Failure      503      {object}  ErrorResponse  "Queue unavailable"
// @Router       /api/v1/queries [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query, err := s.queryService.Ask(r.Context(), req.Question)
	if err != nil {
		s.writeServiceError(w, err, "failed to submit query")
		return
	}

	writeJSON(w, http.StatusCreated, query)
}

// handleListQueries godoc
// @Summary      Recent queries
// @Tags         Queries
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of queries"  default(10)
// @Success      200    {array}   domain.Query
// @Failure      400    {object}  ErrorResponse  "Invalid limit"
// @Router       /api/v1/queries [get]
func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentQueries
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	queries, err := s.queryService.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch queries")
		return
	}
	if queries == nil {
		queries = []*domain.Query{}
	}
	writeJSON(w, http.StatusOK, queries)
}

// handleGetQuery godoc
// @Summary      Get query
// @Description  Returns a query with its answer once processed
// @Tags         Queries
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Query ID"
// @Success      200  {object}  domain.Query
// @Failure      404  {object}  ErrorResponse  "Query not found"
// @Router       /api/v1/queries/{id} [get]
func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	query, err := s.queryService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch query")
		return
	}
	writeJSON(w, http.StatusOK, query)
}

// handleExampleQuestions godoc
// @Summary      Example questions
// @Description  Suggests questions derived from indexed content
// @Tags         Queries
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /api/v1/example-questions [get]
func (s *Server) handleExampleQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queryService.ExampleQuestions(r.Context()))
}

// Stats endpoints

// handleGetStats godoc
// @Summary      Corpus statistics
// @Tags         Stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Stats
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /api/v1/stats [get]
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsService.Get(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleQueueStats godoc
// @Summary      Task queue statistics
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driven.QueueStats
// @Failure      503  {object}  ErrorResponse  "Queue unavailable"
// @Router       /api/v1/admin/queue [get]
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	if s.taskQueue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue not configured")
		return
	}
	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Helper functions

// writeServiceError maps domain errors onto HTTP status codes.
// Client errors echo the error text; server errors use fallback.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
