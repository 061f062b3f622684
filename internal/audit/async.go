package audit

import (
	"context"
	"sync"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.AuditSink = (*Async)(nil)

type queued struct {
	ctx   context.Context
	event model.AuditEvent
}

// Async hands events to a slow sink through a bounded queue. When the queue
// is full the event is dropped and logged.
type Async struct {
	next   model.AuditSink
	logger *logger.Logger

	queue chan queued
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewAsync(next model.AuditSink, size int, logger *logger.Logger) *Async {
	if size <= 0 {
		size = 1
	}

	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan queued, size),
	}

	a.wg.Add(1)
	go a.run()

	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for q := range a.queue {
		a.next.Emit(q.ctx, q.event)
	}
}

func (a *Async) Emit(ctx context.Context, event model.AuditEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return
	}

	select {
	case a.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
	default:
		a.logger.Warn("Audit: queue full, dropping event",
			"action", event.Action,
			"username", event.Username)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
}
