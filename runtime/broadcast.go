package runtime

import (
	"sync"

	"github.com/samber/lo"

	"chat-relay/observability"
)

// Channel fans one room's payloads out to every subscriber.
//
// Each subscriber owns a bounded queue: a slow subscriber never stalls
// the publisher or its neighbours, it loses its own oldest pending
// payloads instead. That drop is the documented overflow policy, not an
// accident, and it is counted in metrics.
//
// Channel is safe for concurrent use by multiple publishers.
type Channel struct {
	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	capacity int
}

// Subscription is one subscriber's private receiving end.
type Subscription struct {
	C  <-chan []byte
	ch chan []byte
}

func newChannel(capacity int) *Channel {
	return &Channel{
		subs:     make(map[*Subscription]struct{}),
		capacity: capacity,
	}
}

func (c *Channel) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan []byte, c.capacity)}
	sub.C = sub.ch

	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[sub] = struct{}{}
	return sub
}

func (c *Channel) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, sub)
}

// Len returns the current subscriber count.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Publish delivers payload to every subscriber without ever blocking.
// The subscriber set is snapshotted first so no channel operation
// happens under the lock.
func (c *Channel) Publish(payload []byte) {
	c.mu.Lock()
	subs := lo.Keys(c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- payload:
			continue
		default:
		}

		// Full queue: evict this subscriber's oldest pending payload,
		// then retry once. When a concurrent drain freed space between
		// the two selects, nothing was lost and nothing is counted.
		dropped := false
		select {
		case <-sub.ch:
			dropped = true
		default:
		}
		select {
		case sub.ch <- payload:
		default:
			// The retry lost to a concurrent refill: the new payload
			// is the one dropped.
			dropped = true
		}
		if dropped {
			observability.FanoutDrops.Inc()
		}
	}
}
