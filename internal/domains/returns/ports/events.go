package ports

import (
	"context"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

// EventPublisher fans review events out to interested systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopEventPublisher drops every event.
var NoopEventPublisher EventPublisher = noopEventPublisher{}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, domain.Event) error { return nil }
