package filequeue

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder collects emitted events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *eventRecorder) kinds(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// fastConfig keeps the source ratios but removes the waiting.
func fastConfig(capacity int) Config {
	cfg := DefaultConfig()
	cfg.QueueCapacity = capacity
	cfg.MinDelay = 0
	cfg.MaxDelay = 0
	cfg.UnitCost = 0
	cfg.RunDuration = time.Second
	return cfg
}

func runAsync(ctx context.Context, a Actor) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()
	return errCh
}

func waitStopped(t *testing.T, a Actor) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatalf("%s не остановился за секунду (state=%s)", a.Name(), a.State())
	}
	assert.Equal(t, StateStopped, a.State())
}

func TestGenerator(t *testing.T) {
	t.Run("конструктор проверяет аргументы", func(t *testing.T) {
		_, err := NewGenerator(nil, DefaultConfig())
		assert.ErrorIs(t, err, ErrNilQueue)

		q := newTestQueue(t, 1)
		cfg := DefaultConfig()
		cfg.Sizes = SizeRange{Min: 5, Max: 1}
		_, err = NewGenerator(q, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("три элемента без обработчика", func(t *testing.T) {
		q := newTestQueue(t, 5)
		rec := &eventRecorder{}
		g, err := NewGenerator(q, fastConfig(5), WithMaxItems(3), WithSink(rec))
		require.NoError(t, err)
		assert.Equal(t, StateRunning, g.State())

		require.NoError(t, g.Run(context.Background()))

		assert.Equal(t, StateStopped, g.State())
		assert.Equal(t, 3, q.Len())
		assert.EqualValues(t, 3, g.Generated())
		events := rec.kinds(EventGenerated)
		require.Len(t, events, 3)
		for i, e := range events {
			assert.Equal(t, i+1, e.QueueLen)
		}
	})

	t.Run("размер и категория берутся из конфигурации", func(t *testing.T) {
		cfg := fastConfig(50)
		cfg.Sizes = SizeRange{Min: 20, Max: 30}
		cfg.Categories = []Category{CategoryXLS}

		q := newTestQueue(t, 50)
		g, err := NewGenerator(q, cfg, WithMaxItems(50), WithRand(rand.New(rand.NewPCG(1, 2))))
		require.NoError(t, err)
		require.NoError(t, g.Run(context.Background()))

		for i := 0; i < 50; i++ {
			item, ok := q.TryTake()
			require.True(t, ok)
			assert.Equal(t, CategoryXLS, item.Category())
			assert.True(t, cfg.Sizes.Contains(item.Size()), "size %d", item.Size())
		}
	})

	t.Run("задержка в пределах [min, max]", func(t *testing.T) {
		cfg := fastConfig(1)
		cfg.MinDelay = 100 * time.Millisecond
		cfg.MaxDelay = 1000 * time.Millisecond
		g, err := NewGenerator(newTestQueue(t, 1), cfg, WithRand(rand.New(rand.NewPCG(3, 4))))
		require.NoError(t, err)

		for i := 0; i < 1000; i++ {
			d := g.nextDelay()
			assert.GreaterOrEqual(t, d, cfg.MinDelay)
			assert.LessOrEqual(t, d, cfg.MaxDelay)
		}
	})

	t.Run("Stop прерывает заблокированный Put", func(t *testing.T) {
		q := newTestQueue(t, 1)
		g, err := NewGenerator(q, fastConfig(1))
		require.NoError(t, err)

		errCh := runAsync(context.Background(), g)
		require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)

		g.Stop()
		waitStopped(t, g)
		require.NoError(t, <-errCh)
		assert.Equal(t, 1, q.Len())
		assert.EqualValues(t, 1, g.Generated())
	})

	t.Run("Stop прерывает паузу между элементами", func(t *testing.T) {
		cfg := fastConfig(1)
		cfg.MinDelay = time.Hour
		cfg.MaxDelay = time.Hour
		g, err := NewGenerator(newTestQueue(t, 1), cfg)
		require.NoError(t, err)

		errCh := runAsync(context.Background(), g)
		time.Sleep(10 * time.Millisecond)
		g.Stop()

		waitStopped(t, g)
		require.NoError(t, <-errCh)
		assert.Zero(t, g.Generated())
	})

	t.Run("Stop до Run и повторный Stop", func(t *testing.T) {
		g, err := NewGenerator(newTestQueue(t, 1), fastConfig(1))
		require.NoError(t, err)

		g.Stop()
		g.Stop()
		assert.Equal(t, StateStopping, g.State())

		require.NoError(t, g.Run(context.Background()))
		assert.Equal(t, StateStopped, g.State())
		assert.Zero(t, g.Generated())
	})

	t.Run("повторный Run запрещён", func(t *testing.T) {
		g, err := NewGenerator(newTestQueue(t, 5), fastConfig(5), WithMaxItems(1))
		require.NoError(t, err)
		require.NoError(t, g.Run(context.Background()))
		assert.ErrorIs(t, g.Run(context.Background()), ErrAlreadyStarted)
	})

	t.Run("отмена контекста завершает цикл", func(t *testing.T) {
		q := newTestQueue(t, 1)
		g, err := NewGenerator(q, fastConfig(1), WithName("gen-1"))
		require.NoError(t, err)
		assert.Equal(t, "gen-1", g.Name())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := runAsync(ctx, g)
		require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
		cancel()

		waitStopped(t, g)
		require.NoError(t, <-errCh)
	})
}
