package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/intake/internal/conversation"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

// Conversations is the engine surface the HTTP API exposes.
type Conversations interface {
	HandleTurn(ctx context.Context, callID, text string) (conversation.Reply, error)
	EndCall(callID string)
	GetSession(callID string) (*session.Session, error)
	ActiveCalls() int
}

type Server struct {
	router *chi.Mux
	port   int
	engine Conversations
	http   *http.Server
}

type turnRequest struct {
	Text string `json:"text"`
}

func NewServer(port int, apiToken string, engine Conversations) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		engine: engine,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/intake/status", s.status)

	router.Route("/api/v1/calls/{callID}", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/turns", s.handleTurn)
		r.Get("/", s.getSession)
		r.Delete("/", s.endCall)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("API server starting", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":        "intake",
		"status":       "active",
		"active_calls": s.engine.ActiveCalls(),
	})
}

// handleTurn handles POST /api/v1/calls/{callID}/turns
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	reply, err := s.engine.HandleTurn(r.Context(), chi.URLParam(r, "callID"), req.Text)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// getSession handles GET /api/v1/calls/{callID}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.GetSession(chi.URLParam(r, "callID"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// endCall handles DELETE /api/v1/calls/{callID}
func (s *Server) endCall(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")
	if strings.TrimSpace(callID) == "" {
		writeError(w, http.StatusBadRequest, session.ErrEmptyCallID.Error())
		return
	}
	s.engine.EndCall(callID)
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyCallID):
		return http.StatusBadRequest
	case errors.Is(err, workorder.ErrSubmit):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
