package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	presenteradapter "notepad/internal/notepad/adapters/presenter"
	"notepad/pkg/logger"
)

const (
	// MIMEEventStream - тип содержимого потока событий.
	MIMEEventStream = "text/event-stream"

	eventBuffer    = 16
	eventKeepAlive = 15 * time.Second
)

// Константы для логирования потока событий.
const (
	LogEventStreamOpened = "event stream opened"
	LogEventStreamClosed = "event stream closed"
)

// Events отдает изменения заметок, папок и уведомления потоком server-sent events.
// Поток завершается при отключении клиента или закрытии Hub.
func (h *Handler) Events(c fiber.Ctx) error {
	ctx := requestContext(c)
	events, cancel := h.hub.Subscribe(ctx, eventBuffer)

	c.Set(fiber.HeaderContentType, MIMEEventStream)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	log := logger.Log(ctx)
	log.Info(ctx, LogEventStreamOpened)

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(eventKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					log.Info(ctx, LogEventStreamClosed)
					return
				}
				if err := writeEvent(w, ev); err != nil {
					log.Debug(ctx, LogEventStreamClosed, zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Debug(ctx, LogEventStreamClosed, zap.Error(err))
					return
				}
			}
		}
	})
}

func writeEvent(w *bufio.Writer, ev presenteradapter.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
		return err
	}
	return w.Flush()
}
