package events

import (
	"sync"
	"testing"

	"github.com/example/tableside/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmitWithNoSubscribersDoesNotQueue(t *testing.T) {
	bus := NewBus(zap.NewNop())

	assert.NotPanics(t, func() {
		bus.Emit(models.OrderEvent{Type: models.EventNewOrder})
	})

	// Subscribing afterward must never receive the earlier event.
	var received []models.OrderEvent
	unsub := bus.Subscribe(func(evt models.OrderEvent) {
		received = append(received, evt)
	})
	defer unsub()

	assert.Empty(t, received)
}

func TestEmitFansOutToAllSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var a, b []models.OrderEventType
	unsubA := bus.Subscribe(func(evt models.OrderEvent) { a = append(a, evt.Type) })
	unsubB := bus.Subscribe(func(evt models.OrderEvent) { b = append(b, evt.Type) })
	defer unsubA()
	defer unsubB()

	bus.Emit(models.OrderEvent{Type: models.EventNewOrder})
	bus.Emit(models.OrderEvent{Type: models.EventOrderUpdate})

	want := []models.OrderEventType{models.EventNewOrder, models.EventOrderUpdate}
	assert.Equal(t, want, a, "delivery order must match emission order")
	assert.Equal(t, want, b)
}

func TestPanickingListenerDoesNotBlockSiblings(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got int
	bus.Subscribe(func(models.OrderEvent) { panic("boom") })
	bus.Subscribe(func(models.OrderEvent) { got++ })

	assert.NotPanics(t, func() {
		bus.Emit(models.OrderEvent{Type: models.EventNewOrder})
	})
	assert.Equal(t, 1, got)
}

func TestUnsubscribeRemovesListener(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got int
	unsub := bus.Subscribe(func(models.OrderEvent) { got++ })
	require.Equal(t, 1, bus.ListenerCount())

	bus.Emit(models.OrderEvent{Type: models.EventNewOrder})
	unsub()
	bus.Emit(models.OrderEvent{Type: models.EventNewOrder})

	assert.Equal(t, 1, got)
	assert.Equal(t, 0, bus.ListenerCount())
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(func(models.OrderEvent) {})
			bus.Emit(models.OrderEvent{Type: models.EventNewOrder})
			unsub()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.ListenerCount())
}
