// Package publisher emits audit events synchronously or through a bounded
// in-process queue.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	id "creditline/pkg/domain"
	audit "creditline/pkg/platform/audit"
	"creditline/pkg/platform/audit/worker"
)

var (
	ErrBufferFull   = errors.New("audit buffer full")
	ErrClosed       = errors.New("audit publisher closed")
	ErrNotQueryable = errors.New("audit store does not support listing")
)

// Publisher stamps events and hands them to a sink. In async mode Emit never
// blocks: a full buffer drops the event and returns ErrBufferFull.
type Publisher struct {
	store  audit.Appender
	logger *slog.Logger
	now    func() time.Time

	bufferSize int
	queue      chan audit.Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with a queue of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Appender, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.queue = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.queue, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit fills in id, timestamp and category, then appends or enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"customer_id", event.CustomerID,
		)
		return ErrBufferFull
	}
}

// List returns a customer's audit trail when the sink is queryable.
func (p *Publisher) List(ctx context.Context, customerID id.CustomerID) ([]audit.Event, error) {
	store, ok := p.store.(audit.Store)
	if !ok {
		return nil, ErrNotQueryable
	}
	return store.ListByCustomer(ctx, customerID)
}

// Close stops accepting events and, in async mode, waits for the queue to drain.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}
