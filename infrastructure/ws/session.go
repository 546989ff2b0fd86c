// Package ws bridges physical websocket connections to room fan-out
// channels and the durable event log.
package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/eventlog"
	"chat-relay/observability"
	"chat-relay/runtime"
)

// Session binds one connection to one room. Two goroutines run per
// session: a write pump draining the room subscription into the socket
// and a read pump decoding inbound frames. Whichever exits first tears
// the pair down; neither outlives the other.
type Session struct {
	log     *slog.Logger
	conn    *websocket.Conn
	room    domain.RoomID
	channel *runtime.Channel
	sub     *runtime.Subscription
	events  contract.EventLog
}

func NewSession(
	log *slog.Logger,
	conn *websocket.Conn,
	room domain.RoomID,
	channel *runtime.Channel,
	sub *runtime.Subscription,
	events contract.EventLog,
) *Session {
	return &Session{
		log:     log,
		conn:    conn,
		room:    room,
		channel: channel,
		sub:     sub,
		events:  events,
	}
}

// Run blocks until the session tears down. The connection is closed on
// exit; releasing the room subscription is the caller's job.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	observability.ActiveSessions.Inc()
	defer observability.ActiveSessions.Dec()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		s.writePump(ctx)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		s.readPump(ctx)
	}()

	<-ctx.Done()
	// Gorilla reads have no context support: closing the connection is
	// what unblocks a read pump stuck in ReadMessage.
	_ = s.conn.Close()
	wg.Wait()
}

// writePump encodes everything the room publishes onto the socket. The
// first failed write is the session's normal shutdown trigger.
func (s *Session) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-s.sub.C:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				s.log.Debug("Write failed, closing session", "room", s.room, "error", err)
				return
			}
		}
	}
}

// readPump decodes inbound frames and dispatches them. A malformed
// frame is dropped, not fatal: the session stays open.
func (s *Session) readPump(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		evt, err := event.DecodeWire(data)
		if err != nil {
			observability.MalformedFrames.Inc()
			s.log.Info("Couldn't deserialize message", "room", s.room, "error", err)
			continue
		}

		if s.handle(ctx, evt) {
			return
		}
	}
}

// handle applies the per-variant dispatch policy. It returns true when
// the session must terminate. Both the re-broadcast and the log enqueue
// are best-effort: live delivery never waits on durability.
func (s *Session) handle(ctx context.Context, evt event.WireEvent) (done bool) {
	switch e := evt.(type) {
	case event.Send:
		e.Message.FillDefaults()
		evt = event.Send{Message: e.Message}
		s.broadcast(evt)
	case event.Update:
		s.broadcast(e)
	case event.Delete:
		s.broadcast(e)
	case event.Seen:
		// Seen receipts are persisted but not pushed back to the room.
	case event.Typing:
		s.broadcast(e)
	case event.Ping:
		// Health check: the reply goes to the whole room, not just the sender.
		s.broadcast(event.Pong{})
	case event.Pong:
		s.broadcast(e)
	case event.Close:
		return true
	}

	// The wire to durable mapping lives in one place; live-only variants
	// come back with ok == false and are not enqueued.
	if durable, partition, ok := eventlog.FromWire(evt); ok {
		s.appendAsync(ctx, partition, durable)
	}
	return false
}

func (s *Session) broadcast(evt event.WireEvent) {
	payload, err := event.EncodeWire(evt)
	if err != nil {
		s.log.Error("Failed to encode event for broadcast", "room", s.room, "error", err)
		return
	}
	s.channel.Publish(payload)
	observability.BroadcastsTotal.Inc()
}

// appendAsync enqueues the durable form of an event fire-and-forget.
// The append survives session teardown; its failure is observed only.
func (s *Session) appendAsync(ctx context.Context, partition string, evt eventlog.Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.events.Append(ctx, partition, evt); err != nil {
			observability.LogAppendFailures.WithLabelValues(partition).Inc()
			s.log.Warn("Log append failed", "partition", partition, "error", err)
			return
		}
		observability.LogAppends.WithLabelValues(partition).Inc()
	}()
}
