package runtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"chat-relay/observability"
)

func TestChannel_EverySubscriberReceivesEveryPayload(t *testing.T) {
	req := require.New(t)
	ch := newChannel(10)

	// Given two subscribers
	first := ch.Subscribe()
	second := ch.Subscribe()

	// When a payload is published
	ch.Publish([]byte("hello"))

	// Then both receive it, byte-identical
	req.Equal([]byte("hello"), <-first.C)
	req.Equal([]byte("hello"), <-second.C)
}

func TestChannel_PublisherIncludedInFanout(t *testing.T) {
	req := require.New(t)
	ch := newChannel(10)
	sub := ch.Subscribe()

	// The sender's own subscription gets the broadcast too
	ch.Publish([]byte("echo"))

	req.Equal([]byte("echo"), <-sub.C)
}

func TestChannel_LaggingSubscriberLosesOldestOnly(t *testing.T) {
	req := require.New(t)
	ch := newChannel(2)

	lagging := ch.Subscribe()
	healthy := ch.Subscribe()

	// Given a subscriber that never drains while three payloads arrive,
	// next to one that keeps up
	ch.Publish([]byte("a"))
	req.Equal([]byte("a"), <-healthy.C)
	ch.Publish([]byte("b"))
	req.Equal([]byte("b"), <-healthy.C)
	ch.Publish([]byte("c"))
	req.Equal([]byte("c"), <-healthy.C)

	// Then the lagging queue kept the newest two; only its own oldest
	// payload was dropped
	req.Equal([]byte("b"), <-lagging.C)
	req.Equal([]byte("c"), <-lagging.C)
	req.Empty(lagging.ch)
}

func TestChannel_PublishNeverBlocks(t *testing.T) {
	ch := newChannel(1)
	_ = ch.Subscribe()

	// A full, never-drained subscription must not stall the publisher
	for i := 0; i < 100; i++ {
		ch.Publish([]byte{byte(i)})
	}
}

func TestChannel_ConcurrentPublishers(t *testing.T) {
	req := require.New(t)
	ch := newChannel(1000)
	sub := ch.Subscribe()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				ch.Publish([]byte(fmt.Sprintf("%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	// 500 publishes fit well below the bound: nothing may be lost
	req.Len(sub.ch, 500)
}

func TestChannel_DropCounterMatchesActualEvictions(t *testing.T) {
	req := require.New(t)
	ch := newChannel(1)
	sub := ch.Subscribe()

	// A publish into free space is not a drop
	before := testutil.ToFloat64(observability.FanoutDrops)
	ch.Publish([]byte("a"))
	req.Equal(before, testutil.ToFloat64(observability.FanoutDrops))

	// An overflow evicts exactly one payload and counts exactly once
	ch.Publish([]byte("b"))
	req.Equal(before+1, testutil.ToFloat64(observability.FanoutDrops))
	req.Equal([]byte("b"), <-sub.C)

	// Draining restored free space: the next publish is clean again
	ch.Publish([]byte("c"))
	req.Equal(before+1, testutil.ToFloat64(observability.FanoutDrops))
}

func TestChannel_UnsubscribeStopsDelivery(t *testing.T) {
	req := require.New(t)
	ch := newChannel(10)
	sub := ch.Subscribe()

	ch.Unsubscribe(sub)
	ch.Publish([]byte("late"))

	req.Empty(sub.ch)
	req.Zero(ch.Len())
}
