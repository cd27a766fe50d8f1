package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/tableside/pkg/models"
	"go.uber.org/zap"
)

// State is the connection lifecycle of a Client. A client owns at most one
// transport connection and one pending reconnect timer at any time.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnectPending
)

// Status is a snapshot of the client's connectivity, for surfacing in a UI.
type Status struct {
	Connected         bool
	LastConnected     time.Time
	ReconnectAttempts int
}

type Handler func(models.OrderEvent)

type Option func(*Client)

// WithBackoff overrides the reconnect policy. Defaults: 5s base, ×1.5 per
// consecutive failure, capped at 30s.
func WithBackoff(base, max time.Duration, factor float64) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.maxDelay = max
		c.factor = factor
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client maintains a best-effort live connection to the stream endpoint.
// Sentinel frames (connected, ping) are swallowed; everything else is
// handed to the handler. Transport failures trigger reconnection with
// exponential backoff; the attempt counter resets on a successful connect.
type Client struct {
	url        string
	handler    Handler
	logger     *zap.Logger
	httpClient *http.Client

	baseDelay time.Duration
	maxDelay  time.Duration
	factor    float64

	mu            sync.Mutex
	state         State
	attempts      int
	lastConnected time.Time
	cancel        context.CancelFunc
	timer         *time.Timer
	closed        bool
}

func NewClient(url string, handler Handler, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		url:        url,
		handler:    handler,
		logger:     logger,
		httpClient: &http.Client{},
		baseDelay:  5 * time.Second,
		maxDelay:   30 * time.Second,
		factor:     1.5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins the first connection attempt. It returns immediately;
// events are delivered from a background goroutine.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateDisconnected {
		return
	}
	ctx := c.beginConnectLocked()
	go c.run(ctx)
}

// beginConnectLocked transitions to Connecting and installs a fresh
// cancelable context. Caller holds c.mu.
func (c *Client) beginConnectLocked() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateConnecting
	return ctx
}

func (c *Client) run(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.scheduleReconnect(err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.scheduleReconnect(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.scheduleReconnect(fmt.Errorf("unexpected status %d", resp.StatusCode))
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	c.attempts = 0
	c.lastConnected = time.Now()
	c.mu.Unlock()

	c.logger.Info("order stream connected", zap.String("url", c.url))

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if data.Len() > 0 {
				c.dispatch(data.Bytes())
				data.Reset()
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
		// id:, event:, retry: and comment lines are not used by the gateway
	}

	c.scheduleReconnect(scanner.Err())
}

func (c *Client) dispatch(raw []byte) {
	var s sentinel
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.Warn("unparseable stream message", zap.Error(err))
		return
	}
	if s.Type == "ping" || s.Type == "connected" {
		return
	}

	var evt models.OrderEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		c.logger.Warn("unparseable order event", zap.Error(err))
		return
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.handler(evt)
}

// scheduleReconnect records the failure and arms the single reconnect
// timer. No-op after Close.
func (c *Client) scheduleReconnect(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.attempts++
	delay := c.backoffDelay(c.attempts)
	c.state = StateReconnectPending

	c.logger.Warn("order stream disconnected, scheduling reconnect",
		zap.Int("attempt", c.attempts),
		zap.Duration("delay", delay),
		zap.Error(cause))

	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		ctx := c.beginConnectLocked()
		c.mu.Unlock()
		c.run(ctx)
	})
}

// backoffDelay grows by the configured factor with each consecutive
// failure and is capped at maxDelay.
func (c *Client) backoffDelay(failures int) time.Duration {
	d := float64(c.baseDelay) * math.Pow(c.factor, float64(failures))
	if d > float64(c.maxDelay) {
		return c.maxDelay
	}
	return time.Duration(d)
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Connected:         c.state == StateConnected,
		LastConnected:     c.lastConnected,
		ReconnectAttempts: c.attempts,
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears down the transport and any pending reconnect timer. No
// further connection attempts or handler invocations happen after Close.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	c.state = StateDisconnected
	if c.timer != nil {
		c.timer.Stop()
	}
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
