// Package eventlog is the durable side of the relay: an append-only,
// partitioned record store that decouples live delivery from persistence.
package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
)

// One partition per durable event kind.
const (
	PartitionSend   = "chat:event:send"
	PartitionUpdate = "chat:event:update"
	PartitionDelete = "chat:event:delete"
	PartitionSeen   = "chat:event:seen"
)

// EntryField is the fixed field key every log entry stores its payload under.
const EntryField = "value"

// Event is the log-facing variant set. Live-only wire events (Typing,
// Ping, Pong, Close) have no durable form.
type Event interface {
	isDurable()
}

type Send struct {
	Message domain.MessageContent
}

type Update struct {
	Message domain.MessageContent
}

type Delete struct {
	IDs []uuid.UUID
}

type MarkAsSeen struct {
	IDs []uuid.UUID
}

func (Send) isDurable()       {}
func (Update) isDurable()     {}
func (Delete) isDurable()     {}
func (MarkAsSeen) isDurable() {}

// FromWire maps a wire event to its durable form and target partition.
// ok is false for live-only variants.
func FromWire(e event.WireEvent) (evt Event, partition string, ok bool) {
	switch v := e.(type) {
	case event.Send:
		return Send{Message: v.Message}, PartitionSend, true
	case event.Update:
		return Update{Message: v.Message}, PartitionUpdate, true
	case event.Delete:
		return Delete{IDs: v.IDs}, PartitionDelete, true
	case event.Seen:
		return MarkAsSeen{IDs: v.IDs}, PartitionSeen, true
	case event.Typing, event.Ping, event.Pong, event.Close:
		return nil, "", false
	}
	return nil, "", false
}

// Encode serializes a durable event with the same external variant
// tagging as the wire protocol.
func Encode(e Event) ([]byte, error) {
	switch v := e.(type) {
	case Send:
		return json.Marshal(map[string]domain.MessageContent{"Send": v.Message})
	case Update:
		return json.Marshal(map[string]domain.MessageContent{"Update": v.Message})
	case Delete:
		return json.Marshal(map[string][]uuid.UUID{"Delete": v.IDs})
	case MarkAsSeen:
		return json.Marshal(map[string][]uuid.UUID{"MarkAsSeen": v.IDs})
	}
	return nil, fmt.Errorf("%w: unknown variant %T", apperrors.ErrMalformedEntry, e)
}

// Decode parses one log entry payload back into its variant.
func Decode(data []byte) (Event, error) {
	trimmed := bytes.TrimSpace(data)
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &tagged); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEntry, err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("%w: expected a single variant tag, got %d", apperrors.ErrMalformedEntry, len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case "Send":
			var m domain.MessageContent
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEntry, err)
			}
			return Send{Message: m}, nil
		case "Update":
			var m domain.MessageContent
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEntry, err)
			}
			return Update{Message: m}, nil
		case "Delete":
			var ids []uuid.UUID
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEntry, err)
			}
			return Delete{IDs: ids}, nil
		case "MarkAsSeen":
			var ids []uuid.UUID
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEntry, err)
			}
			return MarkAsSeen{IDs: ids}, nil
		}
		return nil, fmt.Errorf("%w: unknown variant %q", apperrors.ErrMalformedEntry, tag)
	}
	return nil, apperrors.ErrMalformedEntry
}
