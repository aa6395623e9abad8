package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gitsyncd/gitsyncd/internal/events"
	"github.com/go-core-fx/fiberfx/handler"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const pingInterval = 15 * time.Second

type Handler struct {
	bus *events.Bus

	logger *zap.Logger
}

func NewHandler(bus *events.Bus, logger *zap.Logger) handler.Handler {
	return &Handler{
		bus: bus,

		logger: logger,
	}
}

// Register implements handler.Handler.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/git/events", h.stream)
}

// stream sends completion events as server-sent events until the client goes
// away or the bus is closed.
func (h *Handler) stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ch, unsubscribe := h.bus.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}

				data, err := json.Marshal(event)
				if err != nil {
					h.logger.Error("failed to marshal event", zap.Error(err))
					continue
				}

				if _, err = fmt.Fprintf(w, "id: %s\ndata: %s\n\n", event.ID, data); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
			}

			if err := w.Flush(); err != nil {
				h.logger.Debug("event stream closed", zap.Error(err))
				return
			}
		}
	}))

	return nil
}
