package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/models"
)

func TestBroadcastReachesEventSubscribers(t *testing.T) {
	emitter := NewPurchaseEventEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := emitter.SubscribeToEvent(ctx, "event-1")
	other := emitter.SubscribeToEvent(ctx, "event-2")

	notice := models.PurchaseNotice{
		UserID:      "user-1",
		EventID:     "event-1",
		TicketID:    "tkt_a",
		Type:        "general",
		PurchasedAt: time.Now(),
	}
	emitter.Broadcast(notice)

	select {
	case got := <-ch:
		assert.Equal(t, "tkt_a", got.TicketID)
	case <-time.After(time.Second):
		t.Fatal("Expected subscriber to receive the notice")
	}

	// The other event's subscriber sees nothing
	select {
	case got := <-other:
		t.Fatalf("Unexpected notice for event-2: %v", got)
	default:
	}
}

func TestSubscriberRemovedOnContextDone(t *testing.T) {
	emitter := NewPurchaseEventEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	ch := emitter.SubscribeToEvent(ctx, "event-1")

	cancel()

	// The channel is closed once the cleanup goroutine runs
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "Expected the channel to be closed after cancel")

	// Broadcasting after removal must not panic
	emitter.Broadcast(models.PurchaseNotice{EventID: "event-1", TicketID: "tkt_b"})
}

func TestBroadcastSkipsSlowSubscriber(t *testing.T) {
	emitter := NewPurchaseEventEmitter()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := emitter.SubscribeToEvent(ctx, "event-1")

	// Fill the buffer without draining
	for i := 0; i < 15; i++ {
		emitter.Broadcast(models.PurchaseNotice{EventID: "event-1", TicketID: "tkt"})
	}

	// Buffered capacity is 10; overflow was dropped, not blocked on
	assert.Len(t, ch, 10)
}
