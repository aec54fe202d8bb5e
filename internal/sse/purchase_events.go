package sse

import (
	"context"
	"sync"

	"eventhub/internal/models"
)

// PurchaseEventEmitter manages SSE connections and fan-out of purchase
// notices. Hosts subscribe per event; the cart service broadcasts one
// notice per minted ticket.
type PurchaseEventEmitter struct {
	eventClients     map[string][]chan models.PurchaseNotice
	eventClientMutex sync.RWMutex
}

func NewPurchaseEventEmitter() *PurchaseEventEmitter {
	return &PurchaseEventEmitter{
		eventClients: make(map[string][]chan models.PurchaseNotice),
	}
}

// SubscribeToEvent adds a client to the event's purchase feed. The
// client is removed when its context is done.
func (e *PurchaseEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) chan models.PurchaseNotice {
	clientChan := make(chan models.PurchaseNotice, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// Broadcast delivers a purchase notice to every subscriber of its
// event. Slow clients are skipped rather than blocking the purchase
// path.
func (e *PurchaseEventEmitter) Broadcast(notice models.PurchaseNotice) {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()

	for _, clientChan := range e.eventClients[notice.EventID] {
		select {
		case clientChan <- notice:
		default:
		}
	}
}

func (e *PurchaseEventEmitter) removeClient(eventID string, clientChan chan models.PurchaseNotice) {
	e.eventClientMutex.Lock()
	defer e.eventClientMutex.Unlock()

	clients := e.eventClients[eventID]
	for i, c := range clients {
		if c == clientChan {
			e.eventClients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(e.eventClients[eventID]) == 0 {
		delete(e.eventClients, eventID)
	}
}
