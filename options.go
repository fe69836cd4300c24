package filequeue

import (
	"log/slog"
	"math/rand/v2"
)

// Option configures a Generator or a Processor.
type Option func(*options)

type options struct {
	name     string
	rng      *rand.Rand
	sink     EventSink
	logger   *slog.Logger
	maxItems uint64
}

func newOptions(name string, opts []Option) options {
	o := options{
		name:   name,
		sink:   discardSink{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// WithName overrides the actor name used in logs and status output.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithRand sets the random source of the generator. The processor ignores it.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSink sets where events are emitted. Events are discarded by default.
func WithSink(sink EventSink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// WithLogger sets the logger for actor diagnostics. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxItems makes the actor stop on its own after n items.
// Zero means no limit.
func WithMaxItems(n uint64) Option {
	return func(o *options) {
		o.maxItems = n
	}
}
