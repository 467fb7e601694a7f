package notify

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the application log. It is the fallback
// channel when no AWS destination is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Name() string { return "log" }

func (p *LogPublisher) Publish(ctx context.Context, event Event, message []byte) error {
	p.logger.InfoContext(ctx, "user event",
		slog.String("action", string(event.Action)),
		slog.String("user_id", event.UserID),
		slog.String("subject", event.Subject),
		slog.String("message", string(message)))
	return nil
}
