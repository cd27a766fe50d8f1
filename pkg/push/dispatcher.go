package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/example/tableside/pkg/config"
	"github.com/example/tableside/pkg/models"
	"go.uber.org/zap"
)

// Registry is the slice of the subscription store the dispatcher needs:
// enumerate targets and prune the dead ones.
type Registry interface {
	List(ctx context.Context, userID string) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) (int64, error)
}

// Input describes one notification to fan out. UserID, when set, narrows
// delivery to that user's registrations.
type Input struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	OrderID string `json:"orderId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

type Result struct {
	Endpoint string `json:"endpoint"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type Report struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

type payloadData struct {
	OrderID   string `json:"orderId,omitempty"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

type payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Data  payloadData `json:"data"`
}

// Dispatcher delivers a payload to every registered device. Sends are
// independent: one failing endpoint never blocks the rest. An endpoint
// answering 410 Gone (or 404) is deregistered on the spot, so the
// registry heals itself without manual cleanup.
type Dispatcher struct {
	registry   Registry
	cfg        config.PushConfig
	logger     *zap.Logger
	httpClient *http.Client
}

func NewDispatcher(registry Registry, cfg config.PushConfig, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

func (d *Dispatcher) Send(ctx context.Context, in Input) (*Report, error) {
	subs, err := d.registry.List(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}

	report := &Report{Total: len(subs)}
	if len(subs) == 0 {
		return report, nil
	}

	url := "/"
	if in.OrderID != "" {
		url = "/orders/" + in.OrderID
	}
	body, err := json.Marshal(payload{
		Title: in.Title,
		Body:  in.Body,
		Data: payloadData{
			OrderID:   in.OrderID,
			URL:       url,
			Timestamp: time.Now().UnixMilli(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()
			res := d.sendOne(ctx, sub, body)
			mu.Lock()
			report.Results = append(report.Results, res)
			if res.Success {
				report.Sent++
			} else {
				report.Failed++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	return report, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, sub models.PushSubscription, body []byte) Result {
	opts := &webpush.Options{
		Subscriber:      d.cfg.Subscriber,
		VAPIDPublicKey:  d.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: d.cfg.VAPIDPrivateKey,
		TTL:             d.cfg.TTL,
	}
	if d.httpClient != nil {
		opts.HTTPClient = d.httpClient
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Keys.Auth,
			P256dh: sub.Keys.P256dh,
		},
	}, opts)
	if err != nil {
		d.logger.Warn("push send failed",
			zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return Result{Endpoint: sub.Endpoint, Error: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		// Endpoint is permanently dead; prune the registration.
		if _, derr := d.registry.DeleteByEndpoint(ctx, sub.Endpoint); derr != nil {
			d.logger.Error("failed to prune dead push subscription",
				zap.String("endpoint", sub.Endpoint), zap.Error(derr))
		} else {
			d.logger.Info("pruned dead push subscription",
				zap.String("endpoint", sub.Endpoint),
				zap.Int("status", resp.StatusCode))
		}
		return Result{Endpoint: sub.Endpoint, Error: "endpoint gone"}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Endpoint: sub.Endpoint, Success: true}
	default:
		return Result{
			Endpoint: sub.Endpoint,
			Error:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
}
