// Package app wires the gateway's long-running components — the
// ingestion pipeline and the read API — into one process and owns
// signal-driven graceful shutdown, the way the teacher's App drives its
// storage/weather-station/controller managers from one root context.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Runnable is a long-running component that blocks until ctx is
// cancelled and then returns.
type Runnable interface {
	Run(ctx context.Context) error
}

// PipelineRunnable adapts a func(ctx) component (e.g.
// (*ingest.Pipeline).Run, which has no return value) to the Runnable
// shape App expects.
type PipelineRunnable struct {
	RunFunc func(ctx context.Context)
}

// Run implements Runnable.
func (p PipelineRunnable) Run(ctx context.Context) error {
	p.RunFunc(ctx)
	return nil
}

type namedRunnable struct {
	name string
	r    Runnable
}

// App owns the root context and the set of components it supervises.
type App struct {
	logger     *zap.SugaredLogger
	components []namedRunnable
}

// New creates an empty App. Add components with Add before calling Run.
func New(logger *zap.SugaredLogger) *App {
	return &App{logger: logger}
}

// Add registers a component to be started by Run and stopped on
// shutdown.
func (a *App) Add(name string, r Runnable) {
	a.components = append(a.components, namedRunnable{name: name, r: r})
}

// Run starts every registered component, blocks until SIGINT/SIGTERM or
// ctx is cancelled, then cancels the shared context and waits for every
// component to return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	for _, c := range a.components {
		wg.Add(1)
		go func(c namedRunnable) {
			defer wg.Done()
			if err := c.r.Run(ctx); err != nil {
				a.logger.Errorf("%s exited with error: %v", c.name, err)
			}
		}(c)
	}

	a.logger.Info("gateway started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	cancel()

	a.logger.Info("waiting for all components to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
