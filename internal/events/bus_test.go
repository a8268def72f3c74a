package events_test

import (
	"testing"
	"time"

	"github.com/phocus/phocus/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	bus := events.NewBus()

	_, first := bus.Subscribe()
	_, second := bus.Subscribe()

	sent := events.Event{Type: events.GoalsChanged, At: time.Now()}
	bus.Publish(sent)

	select {
	case got := <-first:
		assert.Equal(t, events.GoalsChanged, got.Type)
	default:
		t.Fatal("first subscriber missed the event")
	}
	select {
	case got := <-second:
		assert.Equal(t, events.GoalsChanged, got.Type)
	default:
		t.Fatal("second subscriber missed the event")
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := events.NewBus()
	id, ch := bus.Subscribe()

	bus.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice must not panic.
	bus.Unsubscribe(id)

	// Publishing after unsubscribe reaches nobody and does not block.
	bus.Publish(events.Event{Type: events.PeriodRollover, At: time.Now()})
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := events.NewBus()
	_, ch := bus.Subscribe()

	// Overflow the subscriber buffer; the extra events are dropped.
	for i := 0; i < 100; i++ {
		bus.Publish(events.Event{Type: events.GoalsChanged, At: time.Now()})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	require.Greater(t, received, 0)
	assert.LessOrEqual(t, received, 100)
}

func TestBusRolloverEventShape(t *testing.T) {
	bus := events.NewBus()
	_, ch := bus.Subscribe()

	at := time.Date(2025, time.March, 11, 0, 0, 30, 0, time.Local)
	bus.Publish(events.Event{Type: events.PeriodRollover, Period: "daily", At: at})

	got := <-ch
	assert.Equal(t, events.PeriodRollover, got.Type)
	assert.Equal(t, "daily", got.Period)
	assert.True(t, got.At.Equal(at))
}
