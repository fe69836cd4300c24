package filequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrControllerStarted    = errors.New("controller already started")
	ErrControllerNotStarted = errors.New("controller not started")
)

// Actor is a long-running loop the controller can start, stop and join.
// Generator and Processor implement it.
type Actor interface {
	Name() string
	Run(ctx context.Context) error
	Stop()
	State() State
	Done() <-chan struct{}
}

// Controller runs actors concurrently, each in its own goroutine, and stops
// them cooperatively.
type Controller struct {
	logger *slog.Logger

	mu     sync.Mutex
	actors []Actor
	done   chan struct{}
	err    error
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger for actor start, stop and panic records.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller with no running actors.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches every actor. A controller can be started once.
func (c *Controller) Start(ctx context.Context, actors ...Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return ErrControllerStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)

	c.actors = append([]Actor(nil), actors...)
	c.done = make(chan struct{})

	for _, a := range c.actors {
		group.Go(func() error { return c.runActor(gctx, a) })
		c.logger.Info("controller: actor started", "actor", a.Name())
	}

	go func() {
		c.err = group.Wait()
		cancel()
		close(c.done)
	}()

	return nil
}

// runActor runs one actor loop and turns a panic into an error.
func (c *Controller) runActor(ctx context.Context, a Actor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("controller: actor panicked",
				"actor", a.Name(), "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("actor %s panicked: %v", a.Name(), r)
		}
	}()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("actor %s: %w", a.Name(), err)
	}
	c.logger.Info("controller: actor exited", "actor", a.Name())
	return nil
}

// Stop asks every actor to stop. It does not wait for them; use Wait.
func (c *Controller) Stop() {
	c.mu.Lock()
	actors := c.actors
	c.mu.Unlock()

	for _, a := range actors {
		c.logger.Info("controller: stopping actor", "actor", a.Name(), "state", a.State())
		a.Stop()
	}
}

// Wait blocks until every actor has exited or ctx is done. It returns the
// first actor error, if any.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return ErrControllerNotStarted
	}

	select {
	case <-done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunFor starts the actors, lets them run for d (or until ctx is done),
// stops them and waits for them to exit.
func (c *Controller) RunFor(ctx context.Context, d time.Duration, actors ...Actor) error {
	if err := c.Start(ctx, actors...); err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		c.logger.Info("controller: run duration elapsed", "duration", d)
	case <-ctx.Done():
		c.logger.Info("controller: run interrupted", "reason", context.Cause(ctx))
	case <-c.done:
	}

	c.Stop()
	return c.Wait(context.WithoutCancel(ctx))
}

// IsRunning reports whether at least one actor loop is still active.
func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// States returns a snapshot of every actor's lifecycle state.
func (c *Controller) States() map[string]State {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[string]State, len(c.actors))
	for _, a := range c.actors {
		states[a.Name()] = a.State()
	}
	return states
}
