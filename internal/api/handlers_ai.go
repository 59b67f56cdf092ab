package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// The writing-assistant endpoints echo their input until a language model
// is wired in.

type improveTextRequest struct {
	Text string `json:"text"`
}

type improveTextResponse struct {
	OriginalText string `json:"original_text"`
	ImprovedText string `json:"improved_text"`
}

type rewriteRequest struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
	Tone  string `json:"tone,omitempty"`
}

type rewriteResponse struct {
	RewrittenText string `json:"rewritten_text"`
}

func (s *Server) handleImproveText(w http.ResponseWriter, r *http.Request) {
	var req improveTextRequest
	if !decodeText(w, r, &req, func() string { return req.Text }) {
		return
	}
	writeJSON(w, http.StatusOK, improveTextResponse{OriginalText: req.Text, ImprovedText: req.Text})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !decodeText(w, r, &req, func() string { return req.Text }) {
		return
	}
	writeJSON(w, http.StatusOK, rewriteResponse{RewrittenText: req.Text})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": doc.ID,
		"summary":     fmt.Sprintf("Summary of %q is not available yet.", doc.Title),
	})
}

// decodeText reads a JSON body into v and requires a non-blank text field.
func decodeText(w http.ResponseWriter, r *http.Request, v any, text func() string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if strings.TrimSpace(text()) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return false
	}
	return true
}
