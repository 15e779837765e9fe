package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PabloGalante/productibot/internal/app/conversation"
	"github.com/PabloGalante/productibot/internal/config"
	"github.com/PabloGalante/productibot/internal/domain"
	"github.com/PabloGalante/productibot/internal/export"
	"github.com/PabloGalante/productibot/internal/observability"
)

type Server struct {
	svc *conversation.Service
}

func NewServer(svc *conversation.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /messages → GET: list, POST: send, DELETE: clear
	mux.HandleFunc("/messages", s.handleMessages)

	// /tasks                   → GET: list
	// /tasks/{index}/complete  → POST: complete
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskWithIndex)

	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/config/generation", s.handleGenerationConfig)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      *domain.Message `json:"user_message"`
	AssistantMessage *domain.Message `json:"assistant_message"`
	Task             *domain.Task    `json:"task,omitempty"`
}

type messagesResponse struct {
	Messages []*domain.Message `json:"messages"`
}

type tasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

type clearResponse struct {
	Cleared bool `json:"cleared"`
}

type generationConfigRequest struct {
	Temperature     *float32 `json:"temperature"`
	MaxOutputTokens *int32   `json:"max_output_tokens"`
	TopP            *float32 `json:"top_p"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": s.svc.Configured(),
		"state":      s.svc.State().String(),
	})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, messagesResponse{Messages: s.svc.Messages()})
	case http.MethodPost:
		s.handleSendMessage(w, r)
	case http.MethodDelete:
		cleared, err := s.svc.ClearConversation(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, clearResponse{Cleared: cleared})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      out.UserMessage,
		AssistantMessage: out.AssistantMessage,
		Task:             out.Task,
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: s.svc.Tasks()})
}

// /tasks/{index}/complete
func (s *Server) handleTaskWithIndex(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "complete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		badRequest(w, "task index must be an integer")
		return
	}

	task, err := s.svc.CompleteTask(r.Context(), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	snap := s.svc.Export()
	if len(snap.Messages) == 0 {
		writeError(w, r, export.ErrNothingToExport)
		return
	}

	data, err := export.Marshal(snap)
	if err != nil {
		internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(snap.ExportDate)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleGenerationConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.svc.GenerationConfig())
	case http.MethodPut:
		var req generationConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}

		cfg := s.svc.GenerationConfig()
		if req.Temperature != nil {
			cfg.Temperature = *req.Temperature
		}
		if req.MaxOutputTokens != nil {
			cfg.MaxOutputTokens = *req.MaxOutputTokens
		}
		if req.TopP != nil {
			cfg.TopP = *req.TopP
		}

		// The HTTP surface is a UI boundary: clamp here, never in the core.
		cfg = config.ClampGeneration(cfg)
		s.svc.SetGenerationConfig(cfg)
		writeJSON(w, http.StatusOK, cfg)
	default:
		methodNotAllowed(w)
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr  *domain.ConfigurationError
		provErr *domain.ProviderError
	)

	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		badRequest(w, "text is required")
	case errors.Is(err, domain.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrTurnInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, export.ErrNothingToExport):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.As(err, &provErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		internalError(w, r, err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
