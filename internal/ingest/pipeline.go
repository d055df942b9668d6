// Package ingest supervises the APRS-IS stream client and drives the
// parse → dedup → persist → broadcast chain across a bounded queue and a
// fixed worker pool, per the concurrency model: a single producer (the
// stream client's line handler) and N=4 concurrent consumers.
package ingest

import (
	"context"
	"time"

	"github.com/chrissnell/aprsingest/internal/aprs"
	"github.com/chrissnell/aprsingest/internal/packet"
	"github.com/chrissnell/aprsingest/internal/stream"
	"go.uber.org/zap"
)

const (
	defaultQueueCapacity = 10000
	defaultWorkerCount   = 4
	reconnectBackoff     = 5 * time.Second
	supervisorTick       = 30 * time.Second
	drainTimeout         = 30 * time.Second
)

// Store is the persistence collaborator the pipeline writes completed
// packets to. Implemented by internal/store.
type Store interface {
	Add(ctx context.Context, p packet.Packet) (packet.Packet, error)
}

// Broadcaster is the fan-out collaborator the pipeline hands packets to
// after a successful persist. Implemented by internal/fanout.
type Broadcaster interface {
	Broadcast(p packet.Packet)
}

// Pipeline owns the stream client, the bounded queue, the dedup cache,
// and the worker pool, and runs the supervisor loop described in §4.3.
type Pipeline struct {
	client     *stream.Client
	store      Store
	fanout     Broadcaster
	dedup      DedupCache
	logger     *zap.SugaredLogger
	workerCount int

	queue *dropOldestQueue
}

// New constructs a Pipeline with the default worker count and queue
// capacity (4 workers, 10000-packet queue). client must not yet be
// connected.
func New(client *stream.Client, store Store, fanout Broadcaster, dedup DedupCache, logger *zap.SugaredLogger) *Pipeline {
	return NewWithCapacity(client, store, fanout, dedup, logger, defaultWorkerCount, defaultQueueCapacity)
}

// NewWithCapacity constructs a Pipeline with an explicit worker count and
// queue capacity, per the ingest.workers/ingest.queueCapacity config keys.
func NewWithCapacity(client *stream.Client, store Store, fanout Broadcaster, dedup DedupCache, logger *zap.SugaredLogger, workers, queueCapacity int) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if queueCapacity <= 0 {
		queueCapacity = defaultQueueCapacity
	}
	return &Pipeline{
		client:      client,
		store:       store,
		fanout:      fanout,
		dedup:       dedup,
		logger:      logger,
		workerCount: workers,
		queue:       newDropOldestQueue(queueCapacity),
	}
}

// Run starts the worker pool and the supervisor loop, blocking until ctx
// is cancelled. On cancellation it closes the queue, waits up to 30 s for
// workers to drain, then disconnects the stream client.
func (p *Pipeline) Run(ctx context.Context) {
	workerDone := make(chan struct{}, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		go p.worker(workerDone)
	}

	p.supervise(ctx)

	p.queue.Close()

	drained := make(chan struct{})
	go func() {
		for i := 0; i < p.workerCount; i++ {
			<-workerDone
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(drainTimeout):
		p.logger.Warn("worker drain timed out after 30s, shutting down anyway")
	}

	p.client.Close()
}

func (p *Pipeline) supervise(ctx context.Context) {
	connDone := make(chan error, 1)
	connecting := false

	ticker := time.NewTicker(supervisorTick)
	defer ticker.Stop()

	for {
		if !connecting {
			connecting = true
			go func() {
				connDone <- p.client.Connect()
			}()
			go p.pump(ctx)
		}

		select {
		case <-ctx.Done():
			return
		case err := <-connDone:
			connecting = false
			if err != nil {
				p.logger.Errorf("stream client error, reconnecting in 5s: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectBackoff):
			}
		case <-ticker.C:
			depth := p.queue.Depth()
			if depth > p.queue.Capacity()/2 {
				p.logger.Warnf("ingest queue depth %d exceeds 50%% of capacity %d", depth, p.queue.Capacity())
			}
		}
	}
}

// pump consumes the stream client's events, parsing each raw line and
// enqueueing the resulting packet without blocking.
func (p *Pipeline) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-p.client.Events:
			if !ok {
				return
			}
			switch ev.Kind {
			case stream.EventLine:
				pkt, err := aprs.Parse(ev.Line, time.Now().UTC())
				if err != nil {
					p.logger.Debugf("dropping unparseable line: %v", err)
					continue
				}
				if !p.queue.Push(pkt) {
					return
				}
			case stream.EventDisconnected:
				return
			}
		}
	}
}

func (p *Pipeline) worker(done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for {
		pkt, ok := p.queue.Pop()
		if !ok {
			return
		}
		p.process(pkt)
	}
}

func (p *Pipeline) process(pkt packet.Packet) {
	fingerprint := pkt.Fingerprint()
	if p.dedup.Contains(fingerprint) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := p.store.Add(ctx, pkt)
	if err != nil {
		p.logger.Errorf("failed to persist packet from %s: %v", pkt.Sender.Value(), err)
		return
	}

	p.dedup.Remember(fingerprint)
	p.fanout.Broadcast(stored)
}
