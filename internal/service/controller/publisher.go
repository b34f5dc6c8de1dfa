package controller

import (
	"context"
	"time"

	"github.com/oshokin/security-zone/internal/domain/zone"
	"github.com/oshokin/security-zone/internal/logger"
)

// defaultPublishTimeout bounds one publisher call.
const defaultPublishTimeout = 5 * time.Second

// Publisher receives every zone output change.
type Publisher interface {
	// Name identifies the publisher in logs.
	Name() string
	// Publish delivers one event.
	Publish(ctx context.Context, event *zone.Event) error
	// Close releases the publisher resources.
	Close() error
}

// publishAll delivers the event to every publisher. Failures are logged only.
func publishAll(ctx context.Context, publishers []Publisher, event *zone.Event) {
	for _, p := range publishers {
		publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
		err := p.Publish(publishCtx, event)

		cancel()

		if err != nil {
			logger.WarnKV(ctx, "Unable to publish zone event",
				"publisher", p.Name(),
				"output", event.Output.String(),
				"error", err,
			)
		}
	}
}

// closeAll closes every publisher, logging failures.
func closeAll(ctx context.Context, publishers []Publisher) {
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			logger.WarnKV(ctx, "Unable to close publisher", "publisher", p.Name(), "error", err)
		}
	}
}
