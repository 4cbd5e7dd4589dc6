// Package events fans complaint lifecycle events out to connected admin
// dashboards. Delivery is best-effort, the same contract as mail dispatch:
// a subscriber that cannot keep up is dropped, never waited on.
package events

import (
	"log"

	"github.com/google/uuid"
)

// Event types published by the lifecycle service.
const (
	TypeNewComplaint     = "new_complaint"
	TypeFeedbackReceived = "feedback_received"
)

// Event is a lifecycle change pushed to live subscribers.
type Event struct {
	Type        string `json:"type"`
	ComplaintID string `json:"complaintId"`
	Title       string `json:"title"`
	Category    string `json:"category,omitempty"`
	Rating      int    `json:"rating,omitempty"`
}

// Subscriber is one connected dashboard.
type Subscriber struct {
	ID   string
	Send chan Event
}

// Hub owns the subscriber map. All mutation happens inside Run's select loop,
// so no locking is needed.
type Hub struct {
	subscribers map[string]*Subscriber

	RegisterCh   chan *Subscriber
	UnregisterCh chan string
	BroadcastCh  chan Event
}

// NewHub creates an idle hub; call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		subscribers:  make(map[string]*Subscriber),
		RegisterCh:   make(chan *Subscriber),
		UnregisterCh: make(chan string),
		BroadcastCh:  make(chan Event, 16),
	}
}

// Run is the hub dispatcher loop.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.RegisterCh:
			h.subscribers[sub.ID] = sub
			log.Printf("INFO: Event subscriber %s connected (%d total)", sub.ID, len(h.subscribers))

		case id := <-h.UnregisterCh:
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub.Send)
			}

		case event := <-h.BroadcastCh:
			for id, sub := range h.subscribers {
				select {
				case sub.Send <- event:
				default:
					// Slow consumer; drop it rather than stall the loop.
					delete(h.subscribers, id)
					close(sub.Send)
					log.Printf("WARNING: Dropped slow event subscriber %s", id)
				}
			}
		}
	}
}

// Subscribe registers a new subscriber and returns it.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.New().String(),
		Send: make(chan Event, 16),
	}
	h.RegisterCh <- sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.UnregisterCh <- id
}

// Publish queues an event for broadcast without blocking the caller.
func (h *Hub) Publish(event Event) {
	select {
	case h.BroadcastCh <- event:
	default:
		log.Printf("WARNING: Event broadcast queue full, dropping %s for %s", event.Type, event.ComplaintID)
	}
}
