package events_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gitsyncd/gitsyncd/internal/events"
	eventshandler "github.com/gitsyncd/gitsyncd/internal/server/handlers/events"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHandler_Stream(t *testing.T) {
	logger := zaptest.NewLogger(t)
	bus := events.NewBus(events.Config{}, logger)

	app := fiber.New()
	eventshandler.NewHandler(bus, logger).Register(app)

	go func() {
		// The subscription is created when the request arrives; keep
		// publishing until it surely has, then end the stream.
		for range 20 {
			bus.Publish(events.Event{ID: "evt-1", Type: "commit", Path: "/work/a", Success: true})
			time.Sleep(10 * time.Millisecond)
		}
		bus.Close()
	}()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/git/events", nil), 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "id: evt-1\n")
	assert.Contains(t, string(body), `data: {"id":"evt-1","type":"commit","path":"/work/a","success":true,`)
}
