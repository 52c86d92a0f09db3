package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kitchen display event types
const (
	EventKOTCreated   = "kot.created"
	EventKOTReversed  = "kot.reversed"
	EventBillSettled  = "bill.settled"
	EventBillReversed = "bill.reversed"
)

// Event is a message pushed to every display of an outlet
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

type outletEvent struct {
	outletID uuid.UUID
	event    Event
}

// Hub keeps one room of clients per outlet and fans events out to them
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *outletEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *outletEvent, 256),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// Call it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.outletID] == nil {
				h.rooms[client.outletID] = make(map[*Client]bool)
			}
			h.rooms[client.outletID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case oe := <-h.broadcast:
			message, err := json.Marshal(oe.event)
			if err != nil {
				log.Printf("ws: failed to encode %s event: %v", oe.event.Type, err)
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[oe.outletID] {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop the client rather than block the room
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove closes client's queue. Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.outletID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.outletID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Publish queues an event for every client of outletID. It never blocks;
// events are dropped when the queue is full.
func (h *Hub) Publish(outletID uuid.UUID, eventType string, payload interface{}) {
	oe := &outletEvent{
		outletID: outletID,
		event:    Event{Type: eventType, Payload: payload, SentAt: time.Now()},
	}
	select {
	case h.broadcast <- oe:
	default:
		log.Printf("ws: broadcast queue full, dropped %s for outlet %s", eventType, outletID)
	}
}

// ClientCount returns the number of clients connected for outletID
func (h *Hub) ClientCount(outletID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[outletID])
}
