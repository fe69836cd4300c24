package filequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrAlreadyStarted = errors.New("actor already started")

// State is the lifecycle state of an actor.
type State int32

const (
	StateRunning State = iota
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// lifecycle is embedded by the generator and the processor. stopCh is the
// broadcast stop request; doneCh is closed once the loop has exited.
type lifecycle struct {
	name    string
	state   atomic.Int32
	started atomic.Bool

	stopOnce   sync.Once
	stopCh     chan struct{}
	finishOnce sync.Once
	doneCh     chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (l *lifecycle) init(name string) {
	l.name = name
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
}

// Name identifies the actor in logs and status output.
func (l *lifecycle) Name() string { return l.name }

// Stop asks the actor to exit its loop. It does not wait; use Done for that.
// Calling Stop more than once has no further effect.
func (l *lifecycle) Stop() {
	l.stopOnce.Do(func() {
		l.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
		close(l.stopCh)

		l.mu.Lock()
		if l.cancel != nil {
			l.cancel()
		}
		l.mu.Unlock()
	})
}

// State is a snapshot of the actor's lifecycle state.
func (l *lifecycle) State() State { return State(l.state.Load()) }

// Done is closed when the actor reaches StateStopped.
func (l *lifecycle) Done() <-chan struct{} { return l.doneCh }

func (l *lifecycle) stopRequested() bool {
	select {
	case <-l.stopCh:
		return true
	default:
		return false
	}
}

func (l *lifecycle) begin() error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	return nil
}

func (l *lifecycle) finish() {
	l.finishOnce.Do(func() {
		l.state.Store(int32(StateStopped))
		close(l.doneCh)
	})
}

// watch derives a context that is cancelled when parent is done or Stop is
// called. Stop cancels it before returning, so a wait entered after Stop
// never starts.
func (l *lifecycle) watch(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	if l.stopRequested() {
		cancel()
	}
	return ctx, cancel
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
