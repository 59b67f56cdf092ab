package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dgallion1/writingstuff/internal/chunker"
	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/filestore"
	"github.com/dgallion1/writingstuff/internal/ingest"
	"github.com/dgallion1/writingstuff/internal/store"
	"github.com/go-chi/chi/v5"
)

// searchResult is one search hit.
type searchResult struct {
	ChunkID        string  `json:"chunk_id"`
	Text           string  `json:"text"`
	PageNumber     int     `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if !s.parseForm(w, r, 32<<20) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	cfg, err := s.chunkingFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	report, err := s.ingest.Ingest(r.Context(), ingest.Upload{
		UserID:      userID,
		Filename:    filestore.SanitizeFilename(header.Filename),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		FileType:    declaredType(r),
		Data:        data,
		Chunking:    cfg,
	})
	if err != nil {
		s.ingestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)
	if !s.parseForm(w, r, 64<<20) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	cfg, err := s.chunkingFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]ingest.BatchItem, len(files))
	var uploads []ingest.Upload
	var slots []int
	for i, fh := range files {
		filename := filestore.SanitizeFilename(fh.Filename)
		results[i].Filename = filename

		data, err := s.readPart(fh)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		uploads = append(uploads, ingest.Upload{
			UserID:   userID,
			Filename: filename,
			Data:     data,
			Chunking: cfg,
		})
		slots = append(slots, i)
	}

	for j, item := range s.ingest.IngestBatch(r.Context(), uploads) {
		results[slots[j]] = item
	}

	writeJSON(w, http.StatusCreated, map[string]any{"documents": results})
}

func (s *Server) readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// handleListDocuments lists all documents for a user.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	docs, err := s.repo.ListDocuments(r.Context(), userID)
	if err != nil {
		s.log.Error("list documents", "user_id", userID, "error", err)
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocument deletes a document and all its chunks.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	removed, err := s.repo.DeleteDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete document", "document_id", id, "error", err)
		jsonError(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	s.log.Info("document deleted", "document_id", id, "chunks_deleted", removed)
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":    id,
		"chunks_deleted": removed,
	})
}

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", store.DefaultChunkLimit)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	chunks, err := s.repo.ListChunks(r.Context(), doc.ID, skip, limit)
	if err != nil {
		s.log.Error("list chunks", "document_id", doc.ID, "error", err)
		jsonError(w, "failed to list chunks", http.StatusInternalServerError)
		return
	}
	if chunks == nil {
		chunks = []store.DocumentChunk{}
	}
	writeJSON(w, http.StatusOK, chunks)
}

// handleSearch matches chunks by substring. Every hit scores 1 until
// chunks carry embeddings.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("query")
	if query == "" {
		jsonError(w, "query parameter is required", http.StatusBadRequest)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	chunks, err := s.repo.SearchChunks(r.Context(), doc.ID, query, limit)
	if err != nil {
		s.log.Error("search chunks", "document_id", doc.ID, "error", err)
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	results := make([]searchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, searchResult{
			ChunkID:        c.ChunkID,
			Text:           c.Content,
			PageNumber:     c.PageNumber,
			RelevanceScore: 1,
		})
	}
	writeJSON(w, http.StatusOK, results)
}

// parseForm parses a multipart body, answering 413 when it exceeds the
// reader limit and 400 for anything else.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, maxMemory int64) bool {
	err := r.ParseMultipartForm(maxMemory)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", tooBig.Limit), http.StatusRequestEntityTooLarge)
		return false
	}
	jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
	return false
}

// chunkingFromForm applies optional chunk_size and overlap overrides to the
// configured defaults.
func (s *Server) chunkingFromForm(r *http.Request) (chunker.Config, error) {
	cfg := s.cfg.Chunking()
	if v := r.FormValue("chunk_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("chunk_size must be an integer")
		}
		cfg.ChunkSize = n
	}
	if v := r.FormValue("overlap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("overlap must be an integer")
		}
		cfg.Overlap = n
	}
	return cfg, cfg.Validate()
}

func declaredType(r *http.Request) document.FileType {
	if v := r.FormValue("file_type"); v != "" {
		return document.ParseFileType(v)
	}
	return ""
}

func (s *Server) ingestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingest.ErrInvalidUpload), errors.Is(err, chunker.ErrInvalidConfig):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("ingest failed", "error", err)
		jsonError(w, "failed to store document", http.StatusInternalServerError)
	}
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	id, ok := documentID(w, r)
	if !ok {
		return nil, false
	}
	doc, err := s.repo.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.Error("get document", "document_id", id, "error", err)
		jsonError(w, "failed to load document", http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}

func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, "invalid document id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
