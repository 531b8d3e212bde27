package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink consumes audit events (file, logger, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}

// Emitter buffers events and delivers them to sinks off the request path.
// Emit never blocks; when the queue is full the event is dropped and
// counted, because audit delivery must not delay an emergency response.
type Emitter struct {
	queue           chan *Event
	sinks           []Sink
	logger          *zap.Logger
	shutdownTimeout time.Duration

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	statsMu sync.Mutex
	stats   Stats
}

// Stats counts emitter activity for observation and tests.
type Stats struct {
	Enqueued uint64
	Dropped  uint64
	Failed   uint64
}

// EmitterConfig controls queue and worker sizing.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// NewEmitter starts background workers delivering to the provided sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Emitter{
		queue:           make(chan *Event, queueSize),
		sinks:           sinks,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

// Emit enqueues the event without blocking the classification path.
func (e *Emitter) Emit(ctx context.Context, ev *Event) {
	if e == nil || ev == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.countDrop()
		return
	}
	select {
	case e.queue <- ev:
		e.statsMu.Lock()
		e.stats.Enqueued++
		e.statsMu.Unlock()
	default:
		e.countDrop()
	}
}

// Close stops accepting events and waits briefly for the queue to drain.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	waitCtx := ctx
	if waitCtx == nil {
		waitCtx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(waitCtx, e.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			e.logger.Warn("audit sink close failed", zap.String("sink", s.Name()), zap.Error(err))
		}
	}
}

// StatsSnapshot copies the current counters.
func (e *Emitter) StatsSnapshot() Stats {
	if e == nil {
		return Stats{}
	}
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

func (e *Emitter) countDrop() {
	e.statsMu.Lock()
	e.stats.Dropped++
	e.statsMu.Unlock()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.queue {
		for _, s := range e.sinks {
			if err := s.Deliver(context.Background(), ev); err != nil {
				e.logger.Warn("audit sink delivery failed", zap.String("sink", s.Name()), zap.Error(err))
				e.statsMu.Lock()
				e.stats.Failed++
				e.statsMu.Unlock()
			}
		}
	}
}
