package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Publisher delivers one encoded event to a channel.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event Event, message []byte) error
}

// Emitter fans an event out to every configured publisher. Delivery failures
// are logged and never returned; a failed notification must not fail the
// user operation that caused it.
type Emitter struct {
	publishers []Publisher
	timeout    time.Duration
	logger     *slog.Logger
}

func NewEmitter(logger *slog.Logger, timeout time.Duration, publishers ...Publisher) *Emitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Emitter{publishers: publishers, timeout: timeout, logger: logger}
}

// Emit encodes the payload once and sends it to each publisher in turn.
func (e *Emitter) Emit(ctx context.Context, event Event) {
	message, err := encode(event)
	if err != nil {
		e.logger.ErrorContext(ctx, "notification encode failed",
			slog.String("action", string(event.Action)),
			slog.String("user_id", event.UserID),
			slog.Any("error", err))
		return
	}

	for _, p := range e.publishers {
		pubCtx, cancel := context.WithTimeout(ctx, e.timeout)
		err := p.Publish(pubCtx, event, message)
		cancel()

		if err != nil {
			e.logger.ErrorContext(ctx, "notification dispatch failed",
				slog.String("publisher", p.Name()),
				slog.String("action", string(event.Action)),
				slog.String("user_id", event.UserID),
				slog.Any("error", err))
			continue
		}
		e.logger.DebugContext(ctx, "notification dispatched",
			slog.String("publisher", p.Name()),
			slog.String("action", string(event.Action)),
			slog.String("user_id", event.UserID))
	}
}

func encode(event Event) ([]byte, error) {
	b, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event.Action, err)
	}
	return b, nil
}
