package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// Server exposes the pipeline's health, status, metrics and event feed.
type Server struct {
	httpServer   *http.Server
	pipeline     *pipeline
	logger       *slog.Logger
	shutdownOnce sync.Once
}

// newServer builds the router for p. The server is not started.
func newServer(addr string, p *pipeline, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: p,
		logger:   logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.Handle("/metrics", p.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/events", p.feed.handleEvents)

	s.httpServer = &http.Server{Addr: addr, Handler: router}
	return s
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("File Queue\n\nGET /healthz\nGET /status\nGET /metrics\nGET /events (websocket)\n"))
}

// handleHealth returns 200 while the actors run and 503 once they have exited.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.pipeline.controller.IsRunning() {
		http.Error(w, "stopped", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := s.pipeline
	resp := StatusResponse{
		Running: p.controller.IsRunning(),
		Queue: QueueStatus{
			Length:   p.queue.Len(),
			Capacity: p.queue.Cap(),
		},
		Actors: []ActorStatus{
			{Name: p.generator.Name(), State: p.generator.State()},
			{Name: p.processor.Name(), State: p.processor.State()},
		},
		Generated:   p.generator.Generated(),
		Processed:   p.processor.Processed(),
		FeedClients: p.feed.clientCount(),
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("server: failed to encode response", "error", err)
	}
}

func (s *Server) listen() {
	s.logger.Info("server: listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("server: http server error", "error", err)
	}
}

// shutdown stops the HTTP server and disconnects feed clients.
func (s *Server) shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("server: shutting down")
		s.pipeline.feed.Close()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
