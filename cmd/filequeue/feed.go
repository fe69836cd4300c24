package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"filequeue"
)

// feedMessage is the JSON frame pushed to /events clients.
type feedMessage struct {
	Type string   `json:"type"`
	Data feedItem `json:"data"`
}

type feedItem struct {
	ID        string             `json:"id"`
	Category  filequeue.Category `json:"category"`
	Size      int                `json:"size"`
	QueueLen  int                `json:"queue_len"`
	ElapsedMS int64              `json:"elapsed_ms,omitempty"`
	At        time.Time          `json:"at"`
}

// eventFeed broadcasts pipeline events to WebSocket clients. A client whose
// buffer is full misses events instead of slowing the actors down.
type eventFeed struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]chan feedMessage
	closed  bool
}

func newEventFeed(logger *slog.Logger) *eventFeed {
	return &eventFeed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan feedMessage),
	}
}

// Emit implements filequeue.EventSink.
func (f *eventFeed) Emit(e filequeue.Event) {
	msg := feedMessage{
		Type: e.Kind.String(),
		Data: feedItem{
			ID:        e.Item.ID().String(),
			Category:  e.Item.Category(),
			Size:      e.Item.Size(),
			QueueLen:  e.QueueLen,
			ElapsedMS: e.Elapsed.Milliseconds(),
			At:        e.At,
		},
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (f *eventFeed) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed: websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan feedMessage, 16)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return
	}
	f.clients[conn] = ch
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		if cur, ok := f.clients[conn]; ok {
			delete(f.clients, conn)
			close(cur)
		}
		f.mu.Unlock()
		_ = conn.Close()
	}()

	// The read loop only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				f.logger.Debug("feed: write failed", "error", err)
				return
			}
		case <-gone:
			return
		}
	}
}

func (f *eventFeed) clientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client and refuses new ones.
func (f *eventFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for conn, ch := range f.clients {
		delete(f.clients, conn)
		close(ch)
	}
}
