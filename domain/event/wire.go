// Package event defines the client-facing wire protocol of the relay.
//
// WireEvent is a closed set of variants, modeled as a sealed interface so
// every dispatch site switches exhaustively: adding a variant breaks
// compilation at each switch that ignores it.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

// WireEvent is one frame body exchanged over a room socket.
type WireEvent interface {
	isWire()
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

type Seen struct {
	IDs []uuid.UUID
}

// Typing is a live-only presence hint, never persisted.
type Typing struct{}

type Ping struct{}

type Pong struct{}

// Close asks the relay to terminate this session.
type Close struct{}

func (Send) isWire()   {}
func (Update) isWire() {}
func (Delete) isWire() {}
func (Seen) isWire()   {}
func (Typing) isWire() {}
func (Ping) isWire()   {}
func (Pong) isWire()   {}
func (Close) isWire()  {}

// EncodeWire serializes an event with external variant tagging: payload
// variants become single-key objects ({"Send":{...}}), unit variants a
// bare string ("Typing").
func EncodeWire(e WireEvent) ([]byte, error) {
	switch v := e.(type) {
	case Send:
		return json.Marshal(map[string]domain.MessageContent{"Send": v.Message})
	case Update:
		return json.Marshal(map[string]domain.MessageContent{"Update": v.Message})
	case Delete:
		return json.Marshal(map[string][]uuid.UUID{"Delete": v.IDs})
	case Seen:
		return json.Marshal(map[string][]uuid.UUID{"Seen": v.IDs})
	case Typing:
		return json.Marshal("Typing")
	case Ping:
		return json.Marshal("Ping")
	case Pong:
		return json.Marshal("Pong")
	case Close:
		return json.Marshal("Close")
	}
	return nil, fmt.Errorf("%w: unknown variant %T", apperrors.ErrMalformedEvent, e)
}

// DecodeWire parses a frame body back into its variant. Any input that is
// not exactly one known variant is rejected.
func DecodeWire(data []byte) (WireEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty frame", apperrors.ErrMalformedEvent)
	}

	if trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
		}
		switch tag {
		case "Typing":
			return Typing{}, nil
		case "Ping":
			return Ping{}, nil
		case "Pong":
			return Pong{}, nil
		case "Close":
			return Close{}, nil
		}
		return nil, fmt.Errorf("%w: unknown variant %q", apperrors.ErrMalformedEvent, tag)
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &tagged); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("%w: expected a single variant tag, got %d", apperrors.ErrMalformedEvent, len(tagged))
	}

	for tag, raw := range tagged {
		switch tag {
		case "Send":
			var m domain.MessageContent
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
			}
			return Send{Message: m}, nil
		case "Update":
			var m domain.MessageContent
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
			}
			return Update{Message: m}, nil
		case "Delete":
			var ids []uuid.UUID
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
			}
			return Delete{IDs: ids}, nil
		case "Seen":
			var ids []uuid.UUID
			if err := json.Unmarshal(raw, &ids); err != nil {
				return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
			}
			return Seen{IDs: ids}, nil
		}
		return nil, fmt.Errorf("%w: unknown variant %q", apperrors.ErrMalformedEvent, tag)
	}
	return nil, apperrors.ErrMalformedEvent
}
