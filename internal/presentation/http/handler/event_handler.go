package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/events"
	"github.com/sirupsen/logrus"
)

const heartbeatInterval = 30 * time.Second

// EventHandler streams branch events to the chair board
type EventHandler struct {
	bus    *events.EventBus
	logger logrus.FieldLogger
}

// NewEventHandler creates a new event handler
func NewEventHandler(bus *events.EventBus, log logrus.FieldLogger) *EventHandler {
	return &EventHandler{bus: bus, logger: log}
}

// Stream handles GET /events as server-sent events. Super-admins without
// a branch receive every branch.
func (h *EventHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	subscriberID := uuid.New().String()
	eventChan := h.bus.Subscribe(ctx, subscriberID, GetBranchID(c))

	_, _ = io.WriteString(c.Writer, "event: connected\ndata: {\"message\":\"connected\"}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return false
			}
			sseData, err := events.FormatSSE(event)
			if err != nil {
				h.logger.WithField("event", event.Type).Warnf("Error formatting SSE: %v", err)
				return true
			}
			_, err = io.WriteString(w, sseData)
			return err == nil
		case <-ticker.C:
			_, err := io.WriteString(w, ": heartbeat\n\n")
			return err == nil
		case <-ctx.Done():
			return false
		}
	})
}
