package stream

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/tableside/pkg/events"
	"github.com/example/tableside/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStreamServer(t *testing.T, bus *events.Bus, heartbeat time.Duration) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	gw := NewGateway(bus, zap.NewNop(), heartbeat)
	r.GET("/api/orders/stream", gw.Handler())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// readFrame reads one data frame from an open SSE response.
func readFrame(t *testing.T, r *bufio.Reader) map[string]interface{} {
	t.Helper()
	var data strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if data.Len() == 0 {
				continue
			}
			break
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(data.String()), &out))
	return out
}

func TestGatewaySendsConnectedSentinelThenEvents(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	srv := newStreamServer(t, bus, time.Minute)

	resp, err := http.Get(srv.URL + "/api/orders/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	reader := bufio.NewReader(resp.Body)

	frame := readFrame(t, reader)
	assert.Equal(t, "connected", frame["type"])

	// The bus subscription is registered before the sentinel is written,
	// so anything emitted from here on must reach this connection.
	bus.Emit(models.OrderEvent{
		Type:  models.EventNewOrder,
		Order: &models.Order{OrderID: "ORD-20260901-001"},
	})

	frame = readFrame(t, reader)
	assert.Equal(t, "new-order", frame["type"])
	order := frame["order"].(map[string]interface{})
	assert.Equal(t, "ORD-20260901-001", order["orderId"])
}

func TestGatewayHeartbeat(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	srv := newStreamServer(t, bus, 50*time.Millisecond)

	resp, err := http.Get(srv.URL + "/api/orders/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "connected", readFrame(t, reader)["type"])
	assert.Equal(t, "ping", readFrame(t, reader)["type"])
}

func TestGatewayUnsubscribesOnDisconnect(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	srv := newStreamServer(t, bus, time.Minute)

	resp, err := http.Get(srv.URL + "/api/orders/stream")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return bus.ListenerCount() == 1
	}, time.Second, 10*time.Millisecond)

	resp.Body.Close()

	require.Eventually(t, func() bool {
		return bus.ListenerCount() == 0
	}, 2*time.Second, 10*time.Millisecond, "bus subscription must be released on disconnect")
}

func TestGatewayFanOutToMultipleClients(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	srv := newStreamServer(t, bus, time.Minute)

	readers := make([]*bufio.Reader, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/api/orders/stream")
		require.NoError(t, err)
		defer resp.Body.Close()
		r := bufio.NewReader(resp.Body)
		assert.Equal(t, "connected", readFrame(t, r)["type"])
		readers = append(readers, r)
	}

	bus.Emit(models.OrderEvent{
		Type:  models.EventOrderUpdate,
		Order: &models.Order{OrderID: "ORD-20260901-002"},
	})

	for _, r := range readers {
		assert.Equal(t, "order-update", readFrame(t, r)["type"])
	}
}
