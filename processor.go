package filequeue

import (
	"context"
	"sync/atomic"
	"time"
)

// Processor takes items from the queue and spends Size*UnitCost on each.
type Processor struct {
	lifecycle

	queue *BoundedQueue
	cfg   Config
	opts  options

	processed atomic.Uint64
}

// NewProcessor creates a processor reading from queue. cfg is validated here.
func NewProcessor(queue *BoundedQueue, cfg Config, opts ...Option) (*Processor, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		queue: queue,
		cfg:   cfg,
		opts:  newOptions("processor", opts),
	}
	p.init(p.opts.name)
	return p, nil
}

// Run is the processor loop. Only Take observes a stop request: an item
// already taken is always processed to the end before Run returns.
func (p *Processor) Run(ctx context.Context) error {
	if err := p.begin(); err != nil {
		return err
	}
	defer p.finish()

	work := context.WithoutCancel(ctx)
	ctx, cancel := p.watch(ctx)
	defer cancel()

	log := p.opts.logger.With("actor", p.name)
	log.Debug("processor: started", "unit_cost", p.cfg.UnitCost)

	for !p.stopRequested() && ctx.Err() == nil {
		item, err := p.queue.Take(ctx)
		if err != nil {
			break
		}

		start := time.Now()
		_ = sleep(work, p.cfg.ProcessingDelay(item.Size()))

		n := p.processed.Add(1)
		p.opts.sink.Emit(Event{
			Kind:     EventProcessed,
			Item:     item,
			QueueLen: p.queue.Len(),
			Elapsed:  time.Since(start),
			At:       time.Now(),
		})

		if p.opts.maxItems > 0 && n >= p.opts.maxItems {
			break
		}
	}

	log.Debug("processor: stopped", "processed", p.processed.Load())
	return nil
}

// Processed is the number of items fully processed.
func (p *Processor) Processed() uint64 { return p.processed.Load() }
