package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// EventPublisher is satisfied by events.Producer. Handlers treat the event
// stream as best-effort: publish errors are logged and swallowed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

func publish(c echo.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}
