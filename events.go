package filequeue

import (
	"context"
	"log/slog"
	"time"
)

// EventKind identifies what happened to an item.
type EventKind int

const (
	EventGenerated EventKind = iota
	EventProcessed
)

func (k EventKind) String() string {
	switch k {
	case EventGenerated:
		return "generated"
	case EventProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is emitted after each generation and each processing completion.
type Event struct {
	Kind     EventKind
	Item     WorkItem
	QueueLen int
	// Elapsed is the time spent processing; zero for generated items.
	Elapsed time.Duration
	At      time.Time
}

// EventSink receives pipeline events. Emit is called from the actor
// goroutines and must not block for long.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

// Emit forwards e to every non-nil sink in order.
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

type discardSink struct{}

func (discardSink) Emit(Event) {}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing one structured record per event.
func NewLogSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger}
}

func (s *logSink) Emit(e Event) {
	attrs := []slog.Attr{
		slog.Any("item", e.Item),
		slog.Int("queue_len", e.QueueLen),
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "filequeue: item "+e.Kind.String(), attrs...)
}
