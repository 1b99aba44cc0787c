package events

import (
	"context"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
)

// LogHandler is the consumer-side sink: it only records that an event arrived.
type LogHandler struct{}

func (LogHandler) OnBookCreated(_ context.Context, event BookEvent) error {
	logProcessing(event)
	return nil
}

func (LogHandler) OnBookUpdated(_ context.Context, event BookEvent) error {
	logProcessing(event)
	return nil
}

func (LogHandler) OnBookDeleted(_ context.Context, event BookEvent) error {
	logProcessing(event)
	return nil
}

func logProcessing(event BookEvent) {
	logger.Info("processing "+string(event.EventType)+" event", map[string]any{
		"bookId": event.BookID,
		"title":  event.BookTitle,
	})
}
