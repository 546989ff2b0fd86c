package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

func newMessage(content string) domain.MessageContent {
	return domain.MessageContent{
		ID:      uuid.New(),
		Content: content,
		Author: domain.User{
			ID:   uuid.New(),
			Name: "alice",
		},
		Room:      uuid.New(),
		Status:    domain.StatusSent,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestWire_SendRoundTrip(t *testing.T) {
	req := require.New(t)
	msg := newMessage("hi")

	// When a Send event is encoded and decoded again
	payload, err := EncodeWire(Send{Message: msg})
	req.NoError(err)
	decoded, err := DecodeWire(payload)
	req.NoError(err)

	// Then the variant and its payload survive unchanged
	send, ok := decoded.(Send)
	req.True(ok)
	req.Equal(msg.ID, send.Message.ID)
	req.Equal("hi", send.Message.Content)
	req.Equal(msg.Room, send.Message.Room)
	req.Equal(domain.StatusSent, send.Message.Status)
}

func TestWire_ExternalTagging(t *testing.T) {
	req := require.New(t)

	// Payload variants are single-key objects
	payload, err := EncodeWire(Send{Message: newMessage("x")})
	req.NoError(err)
	req.Equal(byte('{'), payload[0])
	req.Contains(string(payload), `"Send":`)

	// Unit variants are bare strings
	payload, err = EncodeWire(Typing{})
	req.NoError(err)
	req.Equal(`"Typing"`, string(payload))

	// Ids variants carry a bare array
	id := uuid.New()
	payload, err = EncodeWire(Delete{IDs: []uuid.UUID{id}})
	req.NoError(err)
	req.JSONEq(`{"Delete":["`+id.String()+`"]}`, string(payload))
}

func TestWire_DecodeUnitVariants(t *testing.T) {
	req := require.New(t)

	for raw, want := range map[string]WireEvent{
		`"Typing"`: Typing{},
		`"Ping"`:   Ping{},
		`"Pong"`:   Pong{},
		`"Close"`:  Close{},
	} {
		decoded, err := DecodeWire([]byte(raw))
		req.NoError(err)
		req.Equal(want, decoded)
	}
}

func TestWire_DecodeSeen(t *testing.T) {
	req := require.New(t)
	first, second := uuid.New(), uuid.New()

	decoded, err := DecodeWire([]byte(`{"Seen":["` + first.String() + `","` + second.String() + `"]}`))

	req.NoError(err)
	req.Equal(Seen{IDs: []uuid.UUID{first, second}}, decoded)
}

func TestWire_DecodeRejectsGarbage(t *testing.T) {
	req := require.New(t)

	for _, raw := range []string{
		"",
		"random bytes",
		`"Shout"`,
		`{"Send":{},"Update":{}}`,
		`{"Whisper":{"content":"hi"}}`,
		`{"Delete":"not-an-array"}`,
	} {
		// When a frame that is not exactly one known variant arrives
		_, err := DecodeWire([]byte(raw))

		// Then it is rejected as malformed
		req.ErrorIs(err, apperrors.ErrMalformedEvent, "input %q", raw)
	}
}

func TestWire_StatusEncodesAsVariantName(t *testing.T) {
	req := require.New(t)
	msg := newMessage("hi")
	msg.Status = domain.StatusSeen

	payload, err := EncodeWire(Send{Message: msg})

	req.NoError(err)
	req.Contains(string(payload), `"status":"Seen"`)
}

func TestWire_StatusDecodesFromIntegerCode(t *testing.T) {
	req := require.New(t)
	id, room := uuid.New(), uuid.New()

	decoded, err := DecodeWire([]byte(`{"Send":{"id":"` + id.String() + `","content":"hi","room":"` + room.String() + `","status":2}}`))

	req.NoError(err)
	req.Equal(domain.StatusSent, decoded.(Send).Message.Status)
}
