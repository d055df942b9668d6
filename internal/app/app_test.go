package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeRunnable struct {
	mu      sync.Mutex
	started bool
	stopped bool
	err     error
}

func (f *fakeRunnable) Run(ctx context.Context) error {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()

	<-ctx.Done()

	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	return f.err
}

func (f *fakeRunnable) wasStarted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeRunnable) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func TestAppRunStartsAndStopsAllComponents(t *testing.T) {
	a := New(zap.NewNop().Sugar())
	r1 := &fakeRunnable{}
	r2 := &fakeRunnable{}
	a.Add("one", r1)
	a.Add("two", r2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	waitUntil(t, r1.wasStarted)
	waitUntil(t, r2.wasStarted)

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}

	if !r1.wasStopped() || !r2.wasStopped() {
		t.Error("not every component observed ctx.Done() before Run() returned")
	}
}

func TestAppRunLogsComponentErrorButStillReturns(t *testing.T) {
	a := New(zap.NewNop().Sugar())
	r := &fakeRunnable{err: errors.New("boom")}
	a.Add("flaky", r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	waitUntil(t, r.wasStarted)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil (component errors are logged, not propagated)", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

func TestPipelineRunnableAdaptsFunc(t *testing.T) {
	called := make(chan struct{})
	pr := PipelineRunnable{RunFunc: func(ctx context.Context) {
		close(called)
		<-ctx.Done()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pr.Run(ctx) }()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("RunFunc was never invoked")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition was never satisfied")
}
