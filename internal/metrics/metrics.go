// Package metrics exposes pipeline events as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filequeue"
)

const namespace = "filequeue"

// QueueStats is the part of the queue the collector samples.
type QueueStats interface {
	Len() int
	Cap() int
}

// Collector is an EventSink that counts items per event kind and category
// and tracks queue depth and processing time. It owns its registry.
type Collector struct {
	registry   *prometheus.Registry
	items      *prometheus.CounterVec
	itemSize   prometheus.Histogram
	processing prometheus.Histogram
}

// New registers the pipeline metrics. queue may be nil when depth is not
// needed.
func New(queue QueueStats) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Items seen by the pipeline, by event kind and category.",
		}, []string{"event", "category"}),
		itemSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_size",
			Help:      "Size of generated items.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		processing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_seconds",
			Help:      "Time spent processing one item.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
	}

	c.registry.MustRegister(c.items, c.itemSize, c.processing)

	if queue != nil {
		c.registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_length",
				Help:      "Items currently waiting in the queue.",
			}, func() float64 { return float64(queue.Len()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_capacity",
				Help:      "Fixed capacity of the queue.",
			}, func() float64 { return float64(queue.Cap()) }),
		)
	}

	return c
}

// Emit implements filequeue.EventSink.
func (c *Collector) Emit(e filequeue.Event) {
	c.items.WithLabelValues(e.Kind.String(), e.Item.Category().String()).Inc()

	switch e.Kind {
	case filequeue.EventGenerated:
		c.itemSize.Observe(float64(e.Item.Size()))
	case filequeue.EventProcessed:
		c.processing.Observe(e.Elapsed.Seconds())
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
