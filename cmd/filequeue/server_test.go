package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filequeue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipeline(t *testing.T) *pipeline {
	t.Helper()
	cfg := filequeue.DefaultConfig()
	cfg.MinDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.UnitCost = 0
	cfg.RunDuration = 50 * time.Millisecond

	p, err := newPipeline(cfg, testLogger())
	require.NoError(t, err)
	return p
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	cfg := filequeue.DefaultConfig()
	cfg.QueueCapacity = 0
	_, err := newPipeline(cfg, testLogger())
	assert.ErrorIs(t, err, filequeue.ErrInvalidCapacity)
}

func TestIndex(t *testing.T) {
	s := newServer(":0", testPipeline(t), testLogger())

	rec := serve(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GET /status")
}

func TestHealthFollowsController(t *testing.T) {
	p := testPipeline(t)
	s := newServer(":0", p, testLogger())

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/healthz").Code,
		"not started yet")

	require.NoError(t, p.controller.Start(context.Background(), p.generator, p.processor))
	rec := serve(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	p.controller.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.controller.Wait(ctx))

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/healthz").Code)
}

func TestStatusAfterRun(t *testing.T) {
	p := testPipeline(t)
	s := newServer(":0", p, testLogger())

	require.NoError(t, p.runFor(context.Background()))

	rec := serve(t, s, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Running bool `json:"running"`
		Queue   struct {
			Length   int `json:"length"`
			Capacity int `json:"capacity"`
		} `json:"queue"`
		Actors []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"actors"`
		Generated uint64 `json:"generated"`
		Processed uint64 `json:"processed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Running)
	assert.Equal(t, 5, resp.Queue.Capacity)
	assert.Equal(t, p.queue.Len(), resp.Queue.Length)
	require.Len(t, resp.Actors, 2)
	assert.Equal(t, "generator", resp.Actors[0].Name)
	assert.Equal(t, "stopped", resp.Actors[0].State)
	assert.Equal(t, "processor", resp.Actors[1].Name)
	assert.Equal(t, "stopped", resp.Actors[1].State)
	assert.Equal(t, p.generator.Generated(), resp.Generated)
	assert.LessOrEqual(t, resp.Processed, resp.Generated)
}

func TestMetricsEndpoint(t *testing.T) {
	p := testPipeline(t)
	s := newServer(":0", p, testLogger())

	rec := serve(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filequeue_queue_capacity 5")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newServer(":0", testPipeline(t), testLogger())

	rec := serve(t, s, http.MethodPost, "/status")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdownIsIdempotent(t *testing.T) {
	s := newServer("127.0.0.1:0", testPipeline(t), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.shutdown(ctx))
	assert.NoError(t, s.shutdown(ctx))
}
