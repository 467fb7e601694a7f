package background

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BradenHooton/teamup-users/internal/notify"
)

// Sink receives events drained from the queue.
type Sink interface {
	Emit(ctx context.Context, event notify.Event)
}

// Dispatcher moves notifications off the request path. Emit enqueues and
// returns immediately; worker goroutines hand events to the sink.
type Dispatcher struct {
	sink    Sink
	logger  *slog.Logger
	queue   chan notify.Event
	workers int
	wg      sync.WaitGroup
	stopCh  chan struct{}
	once    sync.Once
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(sink Sink, logger *slog.Logger, queueSize, workers int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		sink:    sink,
		logger:  logger,
		queue:   make(chan notify.Event, queueSize),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the workers. They run until Stop is called; ctx is used for
// delivery and is detached from cancellation so a shutdown still drains.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i)
	}
	d.logger.Info("notification dispatcher started", slog.Int("workers", d.workers), slog.Int("queue_size", cap(d.queue)))
}

func (d *Dispatcher) run(ctx context.Context, worker int) {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(ctx, event)
		case <-d.stopCh:
			// Drain what is already queued before exiting
			for {
				select {
				case event := <-d.queue:
					d.sink.Emit(ctx, event)
				default:
					d.logger.Debug("notification worker stopped", slog.Int("worker", worker))
					return
				}
			}
		}
	}
}

// Emit queues an event. When the queue is full the event is dropped and
// logged rather than blocking the caller.
func (d *Dispatcher) Emit(ctx context.Context, event notify.Event) {
	select {
	case <-d.stopCh:
		d.logger.WarnContext(ctx, "notification dropped after shutdown",
			slog.String("action", string(event.Action)),
			slog.String("user_id", event.UserID))
		return
	default:
	}

	select {
	case d.queue <- event:
	default:
		d.logger.WarnContext(ctx, "notification queue full, event dropped",
			slog.String("action", string(event.Action)),
			slog.String("user_id", event.UserID))
	}
}

// Stop signals the workers and waits for queued events to be delivered.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.stopCh)
	})
	d.wg.Wait()
	d.logger.Info("notification dispatcher stopped")
}
