package filequeue

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidCapacity = errors.New("queue capacity must be > 0")
	ErrInvalidRange    = errors.New("invalid range")
)

// Defaults used by DefaultConfig.
const (
	DefaultQueueCapacity = 5
	DefaultMinDelay      = 100 * time.Millisecond
	DefaultMaxDelay      = 1000 * time.Millisecond
	DefaultMinSize       = 10
	DefaultMaxSize       = 100
	DefaultUnitCost      = 7 * time.Millisecond
	DefaultRunDuration   = 10 * time.Second
)

// Config holds the start-time parameters of a pipeline run.
type Config struct {
	QueueCapacity int
	// MinDelay and MaxDelay bound the pause before each generated item.
	MinDelay time.Duration
	MaxDelay time.Duration
	Sizes    SizeRange
	// UnitCost is the processing time per unit of item size.
	UnitCost    time.Duration
	RunDuration time.Duration
	Categories  []Category
}

// DefaultConfig returns the Default* values with every category enabled.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: DefaultQueueCapacity,
		MinDelay:      DefaultMinDelay,
		MaxDelay:      DefaultMaxDelay,
		Sizes:         SizeRange{Min: DefaultMinSize, Max: DefaultMaxSize},
		UnitCost:      DefaultUnitCost,
		RunDuration:   DefaultRunDuration,
		Categories:    AllCategories(),
	}
}

// Validate rejects configurations the actors cannot run with. Every returned
// error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: %w, got %d", ErrInvalidConfig, ErrInvalidCapacity, c.QueueCapacity)
	}
	if c.MinDelay < 0 || c.MinDelay > c.MaxDelay {
		return fmt.Errorf("%w: %w: delay [%s, %s]", ErrInvalidConfig, ErrInvalidRange, c.MinDelay, c.MaxDelay)
	}
	if c.Sizes.Min <= 0 || c.Sizes.Min > c.Sizes.Max {
		return fmt.Errorf("%w: %w: size [%d, %d]", ErrInvalidConfig, ErrInvalidRange, c.Sizes.Min, c.Sizes.Max)
	}
	if c.UnitCost < 0 {
		return fmt.Errorf("%w: unit cost must be >= 0, got %s", ErrInvalidConfig, c.UnitCost)
	}
	if c.RunDuration <= 0 {
		return fmt.Errorf("%w: run duration must be > 0, got %s", ErrInvalidConfig, c.RunDuration)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	}
	for _, cat := range c.Categories {
		if !cat.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrUnknownCategory, int(cat))
		}
	}
	return nil
}

// ProcessingDelay is the time the processor spends on an item of the given size.
func (c Config) ProcessingDelay(size int) time.Duration {
	return time.Duration(size) * c.UnitCost
}
