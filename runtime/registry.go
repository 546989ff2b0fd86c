package runtime

import (
	"sync"

	"chat-relay/domain"
	"chat-relay/observability"
)

// Registry maps each room to its live fan-out channel. Channels are created
// lazily on first join and removed when their last subscriber leaves, so
// memory stays bounded under room churn.
type Registry struct {
	mu       sync.Mutex
	rooms    map[domain.RoomID]*Channel
	capacity int
}

// NewRegistry builds a registry whose channels buffer up to capacity
// payloads per subscriber.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		rooms:    make(map[domain.RoomID]*Channel),
		capacity: capacity,
	}
}

// Join resolves the room's channel, creating it on a cold room, and
// subscribes the caller. Lookup-or-insert is a single critical section:
// two concurrent first-joins always end up on the same channel instance.
// Join cannot fail.
func (r *Registry) Join(room domain.RoomID) (*Channel, *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.rooms[room]
	if !ok {
		ch = newChannel(r.capacity)
		r.rooms[room] = ch
		observability.ActiveRooms.Inc()
	}
	return ch, ch.Subscribe()
}

// Leave releases one subscription. The room entry is dropped once nobody
// is subscribed anymore; the next join recreates a fresh channel.
func (r *Registry) Leave(room domain.RoomID, sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.rooms[room]
	if !ok {
		return
	}
	ch.Unsubscribe(sub)
	if ch.Len() == 0 {
		delete(r.rooms, room)
		observability.ActiveRooms.Dec()
	}
}

// Rooms returns how many rooms currently have subscribers.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
