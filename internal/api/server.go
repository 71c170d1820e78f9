package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"medlit/internal/config"
	"medlit/internal/rag"
	"medlit/internal/storage"
	"medlit/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

const ingestWorkflowID = "corpus-ingest"

type Server struct {
	cfg      config.Config
	system   *rag.System
	temporal tclient.Client
	audit    *storage.QueryAuditRepo
}

// NewServer wires the HTTP surface over an assembled RAG system. The
// temporal client and audit repo may be nil; their endpoints degrade
// rather than failing startup.
func NewServer(cfg config.Config, system *rag.System, temporal tclient.Client, audit *storage.QueryAuditRepo) *Server {
	return &Server{cfg: cfg, system: system, temporal: temporal, audit: audit}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/papers", s.handlePapers)
	mux.HandleFunc("/topics", s.handleTopics)
	mux.HandleFunc("/analytics", s.handleAnalytics)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/ingest/progress", s.handleIngestProgress)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Query     string `json:"query"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := s.system.Query(r.Context(), req.Query, sessionID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.recordQuery(r, req.Query, sessionID, len(answer.Sources))

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":     answer.Response,
		"sources":    answer.Sources,
		"session_id": sessionID,
	})
}

func (s *Server) recordQuery(r *http.Request, query, sessionID string, sourceCount int) {
	if s.audit == nil {
		return
	}
	err := s.audit.Insert(r.Context(), storage.QueryRecord{
		SessionID:   sessionID,
		Question:    query,
		Model:       s.cfg.AnthropicModel,
		SourceCount: sourceCount,
		Status:      "ok",
	})
	if err != nil {
		log.Printf("record query audit: %v", err)
	}
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	papers, err := s.system.Papers(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"papers": papers})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	topics, err := s.system.Topics(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	analytics, err := s.system.Analytics(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("ingestion service unavailable"))
		return
	}
	var req struct {
		ClearExisting bool `json:"clear_existing"`
	}
	if r.Body != nil {
		// Body is optional; a bare POST means incremental ingest.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       ingestWorkflowID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.CorpusIngestWorkflow, workflows.CorpusIngestInput{
		InputDir:      s.cfg.PapersDir,
		ClearExisting: req.ClearExisting,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"workflow_id": we.GetID(), "run_id": we.GetRunID()})
}

func (s *Server) handleIngestProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if s.temporal == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("ingestion service unavailable"))
		return
	}
	resp, err := s.temporal.QueryWorkflow(r.Context(), ingestWorkflowID, "", workflows.QueryGetProgress)
	if err != nil {
		// No active workflow to query; fall back to what the catalog shows.
		analytics, aErr := s.system.Analytics(r.Context())
		if aErr != nil {
			writeErr(w, http.StatusInternalServerError, aErr)
			return
		}
		writeJSON(w, http.StatusOK, workflows.CorpusIngestProgress{
			Total:       analytics.TotalPapers,
			Done:        analytics.TotalPapers,
			PapersAdded: analytics.TotalPapers,
		})
		return
	}
	var prog workflows.CorpusIngestProgress
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string
	Message string
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "ML-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "ML-API-5002",
				Message: "A backing service is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "ML-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "ML-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "ML-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "ML-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "ML-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "query is required"):
			msg = "A question is required."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
