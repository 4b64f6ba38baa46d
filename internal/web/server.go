// Package web is the HTTP surface: routing, session guarding, credential
// forms, and the task pages driving the task list controller.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"taskverse/internal/backend"
	"taskverse/internal/config"
)

// Server wires handlers to the backend client.
type Server struct {
	client      backend.Client
	cfg         *config.Config
	log         *slog.Logger
	templates   *templateSet
	controllers *controllerSet

	// baseCtx outlives any single request; mounted controllers and their
	// subscriptions are bound to it, not to the request that created them.
	baseCtx context.Context
}

// NewServer builds the server. ctx bounds the lifetime of mounted
// controllers and realtime subscriptions.
func NewServer(ctx context.Context, client backend.Client, cfg *config.Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	ts, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Server{
		client:      client,
		cfg:         cfg,
		log:         log,
		templates:   ts,
		controllers: newControllerSet(),
		baseCtx:     ctx,
	}, nil
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	guarded := r.NewRoute().Subrouter()
	guarded.Use(s.requireSession)
	guarded.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	guarded.HandleFunc("/tasks", s.handleTasks).Methods(http.MethodGet)
	guarded.HandleFunc("/tasks", s.handleAddTask).Methods(http.MethodPost)
	guarded.HandleFunc("/tasks/{id}/toggle", s.handleToggleTask).Methods(http.MethodPost)
	guarded.HandleFunc("/tasks/{id}/delete", s.handleDeleteTask).Methods(http.MethodPost)
	guarded.HandleFunc("/tasks/events", s.handleTaskEvents).Methods(http.MethodGet)

	return r
}

// Shutdown closes every mounted controller, releasing their subscriptions.
func (s *Server) Shutdown() {
	s.controllers.closeAll()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.tmpl", nil)
}
