package events

import (
	"context"
	"log/slog"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.logger.LogAttrs(ctx, slog.LevelInfo, "review event",
		slog.String("event", event.EventName()),
		slog.Int64("return.id", event.AggregateID()),
		slog.Any("payload", event),
	)
	return nil
}
