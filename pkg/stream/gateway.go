package stream

import (
	"net/http"
	"time"

	"github.com/example/tableside/pkg/events"
	"github.com/example/tableside/pkg/models"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sentinel frames recognised (and skipped) by clients alongside real events.
type sentinel struct {
	Type string `json:"type"`
}

// Gateway exposes bus activity to remote admin clients as Server-Sent
// Events. Each connection gets its own bus subscription and heartbeat;
// events are broadcast to every open connection.
type Gateway struct {
	bus       *events.Bus
	logger    *zap.Logger
	heartbeat time.Duration

	// per-connection event buffer size; a client that cannot drain fast
	// enough loses events rather than stalling the emitter.
	bufferSize int
}

func NewGateway(bus *events.Bus, logger *zap.Logger, heartbeat time.Duration) *Gateway {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Gateway{
		bus:        bus,
		logger:     logger,
		heartbeat:  heartbeat,
		bufferSize: 16,
	}
}

// Handler returns the gin handler for the stream endpoint.
func (g *Gateway) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		connID := uuid.NewString()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Writer.WriteHeader(http.StatusOK)

		ch := make(chan models.OrderEvent, g.bufferSize)
		unsubscribe := g.bus.Subscribe(func(evt models.OrderEvent) {
			select {
			case ch <- evt:
			default:
				g.logger.Warn("stream client too slow, dropping event",
					zap.String("conn_id", connID),
					zap.String("event_type", string(evt.Type)))
			}
		})
		defer unsubscribe()

		if err := g.write(c, sentinel{Type: "connected"}); err != nil {
			return
		}

		g.logger.Info("stream client connected", zap.String("conn_id", connID))

		ticker := time.NewTicker(g.heartbeat)
		defer ticker.Stop()

		ctx := c.Request.Context()
		for {
			select {
			case <-ctx.Done():
				g.logger.Info("stream client disconnected", zap.String("conn_id", connID))
				return
			case evt := <-ch:
				if err := g.write(c, evt); err != nil {
					g.logger.Warn("stream write failed",
						zap.String("conn_id", connID), zap.Error(err))
					return
				}
			case <-ticker.C:
				if err := g.write(c, sentinel{Type: "ping"}); err != nil {
					return
				}
			}
		}
	}
}

func (g *Gateway) write(c *gin.Context, data interface{}) error {
	if err := sse.Encode(c.Writer, sse.Event{Data: data}); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
