package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"filequeue"
	"filequeue/internal/config"
	"filequeue/internal/logging"
	"filequeue/internal/metrics"
)

// pipeline is one generator and one processor sharing a bounded queue.
type pipeline struct {
	cfg        filequeue.Config
	queue      *filequeue.BoundedQueue
	generator  *filequeue.Generator
	processor  *filequeue.Processor
	controller *filequeue.Controller
	metrics    *metrics.Collector
	feed       *eventFeed
}

func newPipeline(cfg filequeue.Config, logger *slog.Logger) (*pipeline, error) {
	queue, err := filequeue.NewBoundedQueue(cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:        cfg,
		queue:      queue,
		controller: filequeue.NewController(filequeue.WithControllerLogger(logger)),
		metrics:    metrics.New(queue),
		feed:       newEventFeed(logger),
	}

	sink := filequeue.MultiSink{filequeue.NewLogSink(logger), p.metrics, p.feed}

	p.generator, err = filequeue.NewGenerator(queue, cfg,
		filequeue.WithSink(sink), filequeue.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	p.processor, err = filequeue.NewProcessor(queue, cfg,
		filequeue.WithSink(sink), filequeue.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// runFor drives both actors for the configured duration.
func (p *pipeline) runFor(ctx context.Context) error {
	return p.controller.RunFor(ctx, p.cfg.RunDuration, p.generator, p.processor)
}

// run loads configuration, starts the status server and drives the
// pipeline until the run duration elapses or a signal arrives.
func run() error {
	cfg, err := config.Load(os.Getenv("FILEQUEUE_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(pcfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *Server
	if cfg.HTTP.Addr != "" {
		srv = newServer(cfg.HTTP.Addr, p, logger)
		go srv.listen()
	}

	logger.Info("pipeline starting",
		"capacity", pcfg.QueueCapacity,
		"duration", pcfg.RunDuration,
		"categories", pcfg.Categories)

	runErr := p.runFor(ctx)

	logger.Info("pipeline finished",
		"generated", p.generator.Generated(),
		"processed", p.processor.Processed(),
		"left_in_queue", p.queue.Len())

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.shutdown(shutdownCtx); err != nil {
			logger.Warn("server: shutdown incomplete", "error", err)
		}
	} else {
		p.feed.Close()
	}

	return runErr
}
