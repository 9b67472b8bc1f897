package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/completion"
)

const maxBodyBytes = 4 << 20

type completionRequest struct {
	Prompt string          `json:"prompt"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	Schema json.RawMessage `json:"schema"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return false
	}
	return true
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var body completionRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Prompt) == "" || strings.TrimSpace(body.Type) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	kind, err := completion.ParseKind(body.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type", err)
		return
	}

	req := completion.Request{Kind: kind, Prompt: body.Prompt}
	if len(body.Data) > 0 {
		req.Data = body.Data
	}
	if len(body.Schema) > 0 {
		req.Schema = body.Schema
	}

	result, err := s.deps.Completer.Run(r.Context(), req)
	if err != nil {
		s.failCompletion(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) failCompletion(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status, message := completionStatus(err, fallback)
	s.logger.Warn("completion request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID(r.Context())),
		zap.Error(err),
	)
	writeError(w, status, message, err)
}

type chartRequest struct {
	Category int    `json:"category"`
	Prompt   string `json:"prompt"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var body chartRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Category <= 0 || strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	result, err := s.deps.Negotiator.GenerateChart(r.Context(), body.Category, body.Prompt)
	if err != nil {
		s.failCompletion(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var body chartRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Category <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	result, err := s.deps.Negotiator.Insights(r.Context(), body.Category, body.Prompt)
	if err != nil {
		s.failCompletion(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.Atoi(r.URL.Query().Get("category"))
	if err != nil || category <= 0 {
		writeError(w, http.StatusBadRequest, "category must be a positive integer", err)
		return
	}
	schema, err := s.deps.Negotiator.GetDataSchema(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build data schema", err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
