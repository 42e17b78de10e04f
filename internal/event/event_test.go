package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/event"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := event.NewBus()

	var first, second []event.Name

	unsubFirst := bus.Subscribe(func(_ context.Context, e event.Event) { first = append(first, e.Name) })
	bus.Subscribe(func(_ context.Context, e event.Event) { second = append(second, e.Name) })

	bus.Publish(t.Context(), event.Event{Name: event.LowBalance, Data: event.LowBalanceData{Account: "wallet"}})

	unsubFirst()
	unsubFirst()

	bus.Publish(t.Context(), event.Event{Name: event.PlanRemoved})

	assert.Equal(t, []event.Name{event.LowBalance}, first)
	assert.Equal(t, []event.Name{event.LowBalance, event.PlanRemoved}, second)
}

func TestBus_StampsTime(t *testing.T) {
	bus := event.NewBus()
	at := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	var got []time.Time

	bus.Subscribe(func(_ context.Context, e event.Event) { got = append(got, e.At) })

	bus.Publish(t.Context(), event.Event{Name: event.AccountRemoved})
	bus.Publish(t.Context(), event.Event{Name: event.AccountRemoved, At: at})

	require.Len(t, got, 2)
	assert.False(t, got[0].IsZero())
	assert.Equal(t, at, got[1])
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := event.NewBus()
	calls := 0

	bus.Subscribe(func(context.Context, event.Event) {
		calls++
		bus.Subscribe(func(context.Context, event.Event) { calls++ })
	})

	bus.Publish(t.Context(), event.Event{Name: event.PlanCreated})
	assert.Equal(t, 1, calls)

	bus.Publish(t.Context(), event.Event{Name: event.PlanCreated})
	assert.Equal(t, 3, calls)
}
