package filequeue

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var ErrNilQueue = errors.New("queue is nil")

// Generator produces work items at random intervals and puts them into the
// queue until it is stopped.
type Generator struct {
	lifecycle

	queue *BoundedQueue
	cfg   Config
	opts  options

	generated atomic.Uint64
}

// NewGenerator creates a generator writing into queue. cfg is validated here.
func NewGenerator(queue *BoundedQueue, cfg Config, opts ...Option) (*Generator, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		queue: queue,
		cfg:   cfg,
		opts:  newOptions("generator", opts),
	}
	g.init(g.opts.name)
	return g, nil
}

// Run is the generator loop. It returns nil once the generator is stopped,
// ctx is done or the item limit is reached; a Put or a sleep cut short by
// the stop request is not an error.
func (g *Generator) Run(ctx context.Context) error {
	if err := g.begin(); err != nil {
		return err
	}
	defer g.finish()

	ctx, cancel := g.watch(ctx)
	defer cancel()

	log := g.opts.logger.With("actor", g.name)
	log.Debug("generator: started", "capacity", g.queue.Cap())

	for !g.stopRequested() && ctx.Err() == nil {
		if err := sleep(ctx, g.nextDelay()); err != nil {
			break
		}

		item, err := NewWorkItem(g.nextCategory(), g.nextSize(), g.cfg.Sizes)
		if err != nil {
			return err
		}

		if err := g.queue.Put(ctx, item); err != nil {
			log.Debug("generator: put interrupted", "item", item)
			break
		}

		n := g.generated.Add(1)
		g.opts.sink.Emit(Event{
			Kind:     EventGenerated,
			Item:     item,
			QueueLen: g.queue.Len(),
			At:       time.Now(),
		})

		if g.opts.maxItems > 0 && n >= g.opts.maxItems {
			break
		}
	}

	log.Debug("generator: stopped", "generated", g.generated.Load())
	return nil
}

// Generated is the number of items successfully put into the queue.
func (g *Generator) Generated() uint64 { return g.generated.Load() }

func (g *Generator) nextDelay() time.Duration {
	span := int64(g.cfg.MaxDelay - g.cfg.MinDelay)
	return g.cfg.MinDelay + time.Duration(g.opts.rng.Int64N(span+1))
}

func (g *Generator) nextSize() int {
	return g.cfg.Sizes.Min + g.opts.rng.IntN(g.cfg.Sizes.Max-g.cfg.Sizes.Min+1)
}

func (g *Generator) nextCategory() Category {
	return g.cfg.Categories[g.opts.rng.IntN(len(g.cfg.Categories))]
}
