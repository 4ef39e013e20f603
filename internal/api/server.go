package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mentra-labs/mentra/internal/chat"
	"github.com/mentra-labs/mentra/internal/events"
	"github.com/mentra-labs/mentra/internal/ingest"
	"github.com/mentra-labs/mentra/internal/store"
)

type Server struct {
	router         *chi.Mux
	httpServer     *http.Server
	store          *store.Store
	chat           *chat.Orchestrator
	events         *events.Publisher
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewServer(port int, st *store.Store, orch *chat.Orchestrator, pub *events.Publisher, corsOrigins []string, maxUploadBytes int64, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	s := &Server{
		router:         router,
		store:          st,
		chat:           orch,
		events:         pub,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
	}

	router.Get("/api/health", s.health)
	router.Route("/api/threads", func(r chi.Router) {
		r.Get("/", s.listThreads)
		r.Post("/", s.createThread)
		r.Delete("/{id}", s.deleteThread)
		r.Post("/{id}/messages", s.postMessage)
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	threads := s.store.List()
	writeJSON(w, http.StatusOK, map[string]any{"threads": threads})
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	thread := s.store.Create()
	s.events.ThreadCreated(thread.ID)
	s.logger.Info("thread created", "thread_id", thread.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"thread": thread})
}

func (s *Server) deleteThread(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	s.events.ThreadDeleted(id)
	s.logger.Info("thread deleted", "thread_id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	uploads, err := readUploads(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}

	opts := chat.PostOptions{
		ResponseStyle:   r.FormValue("responseStyle"),
		IncludePractice: r.FormValue("includePractice") == "true",
	}

	result, err := s.chat.Post(r.Context(), id, r.FormValue("content"), uploads, opts)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "thread not found")
		return
	case errors.Is(err, ingest.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message must include text or files")
		return
	case err != nil:
		s.logger.Error("post message failed", "thread_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if result.ModelFailed {
		// The thread already carries the recovery turn; return it alongside
		// the error status so the client can resynchronize.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "model request failed",
			"message": result.Assistant,
			"thread":  result.Thread,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": result.Assistant,
		"thread":  result.Thread,
	})
}

func readUploads(r *http.Request) ([]chat.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var uploads []chat.Upload
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, chat.Upload{
			Name:      fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Data:      data,
		})
	}
	return uploads, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
