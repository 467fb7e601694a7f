package background

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/teamup-users/internal/notify"
)

type countingSink struct {
	mu     sync.Mutex
	events []notify.Event
	block  chan struct{}
}

func (s *countingSink) Emit(ctx context.Context, event notify.Event) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestDispatcher_DeliversQueuedEventsOnStop(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(sink, testLogger(), 16, 2)
	d.Start(context.Background())

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), notify.Event{Action: notify.ActionCreate})
	}
	d.Stop()

	assert.Equal(t, 10, sink.count())
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	sink := &countingSink{block: make(chan struct{})}
	d := NewDispatcher(sink, testLogger(), 1, 1)

	// Not started, so nothing consumes: the second event has no room
	d.Emit(context.Background(), notify.Event{Action: notify.ActionCreate, UserID: "a"})
	d.Emit(context.Background(), notify.Event{Action: notify.ActionCreate, UserID: "b"})

	close(sink.block)
	d.Start(context.Background())
	d.Stop()

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, "a", sink.events[0].UserID)
}

func TestDispatcher_EmitAfterStopIsDropped(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(sink, testLogger(), 4, 1)
	d.Start(context.Background())
	d.Stop()

	d.Emit(context.Background(), notify.Event{Action: notify.ActionDelete})

	assert.Equal(t, 0, sink.count())
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	d := NewDispatcher(&countingSink{}, testLogger(), 4, 1)
	d.Start(context.Background())

	d.Stop()
	d.Stop()
}

func TestDispatcher_SurvivesCancelledStartContext(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(sink, testLogger(), 4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	d.Emit(context.Background(), notify.Event{Action: notify.ActionUpdate})
	d.Stop()

	assert.Equal(t, 1, sink.count())
}
