package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/example/tableside/pkg/config"
	"github.com/example/tableside/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	mu      sync.Mutex
	subs    []models.PushSubscription
	deleted []string
}

func (f *fakeRegistry) List(_ context.Context, userID string) ([]models.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == "" {
		return append([]models.PushSubscription(nil), f.subs...), nil
	}
	var out []models.PushSubscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRegistry) DeleteByEndpoint(_ context.Context, endpoint string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	kept := f.subs[:0]
	var n int64
	for _, s := range f.subs {
		if s.Endpoint == endpoint {
			n++
			continue
		}
		kept = append(kept, s)
	}
	f.subs = kept
	return n, nil
}

func testKeys(t *testing.T) models.SubscriptionKeys {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return models.SubscriptionKeys{
		P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func testDispatcher(t *testing.T, reg Registry) *Dispatcher {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewDispatcher(reg, config.PushConfig{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subscriber:      "mailto:admin@tableside.local",
		TTL:             30,
	}, zap.NewNop())
}

func TestDispatcherFanOutAndPrune(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/gone") {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	reg := &fakeRegistry{subs: []models.PushSubscription{
		{Endpoint: srv.URL + "/device-a", Keys: testKeys(t)},
		{Endpoint: srv.URL + "/device-b/gone", Keys: testKeys(t)},
		{Endpoint: srv.URL + "/device-c", Keys: testKeys(t)},
	}}
	d := testDispatcher(t, reg)

	report, err := d.Send(context.Background(), Input{Title: "New order", Body: "test"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results, 3)

	// 410 must trigger deregistration of exactly the gone endpoint.
	assert.Equal(t, []string{srv.URL + "/device-b/gone"}, reg.deleted)
	assert.Len(t, reg.subs, 2)
}

func TestDispatcherNoSubscriptions(t *testing.T) {
	d := testDispatcher(t, &fakeRegistry{})

	report, err := d.Send(context.Background(), Input{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, &Report{}, report)
}

func TestDispatcherIsolatesUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	reg := &fakeRegistry{subs: []models.PushSubscription{
		{Endpoint: deadURL + "/device-a", Keys: testKeys(t)},
		{Endpoint: srv.URL + "/device-b", Keys: testKeys(t)},
	}}
	d := testDispatcher(t, reg)

	report, err := d.Send(context.Background(), Input{Title: "t", Body: "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sent, "reachable endpoint still delivered")
	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, reg.deleted, "connection errors are not a prune signal")
}

func TestDispatcherFiltersByUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	reg := &fakeRegistry{subs: []models.PushSubscription{
		{Endpoint: srv.URL + "/a", Keys: testKeys(t), UserID: "staff-1"},
		{Endpoint: srv.URL + "/b", Keys: testKeys(t), UserID: "staff-2"},
	}}
	d := testDispatcher(t, reg)

	report, err := d.Send(context.Background(), Input{Title: "t", Body: "b", UserID: "staff-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Sent)
}

func TestStatusNotificationTemplates(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
		models.StatusReady, models.StatusCompleted, models.StatusCancelled,
	} {
		in, ok := StatusNotification(status, "ORD-20260901-001", "Aye")
		require.True(t, ok, "missing template for %s", status)
		assert.NotEmpty(t, in.Title)
		assert.Contains(t, in.Body, "ORD-20260901-001")
		assert.Equal(t, "ORD-20260901-001", in.OrderID)
	}

	_, ok := StatusNotification("bogus", "x", "y")
	assert.False(t, ok)
}
