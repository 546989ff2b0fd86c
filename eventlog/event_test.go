package eventlog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
)

func TestFromWire_PersistedVariants(t *testing.T) {
	req := require.New(t)
	msg := domain.MessageContent{ID: uuid.New(), Content: "hi"}
	ids := []uuid.UUID{uuid.New()}

	// Send, Update and Delete map to their durable twin
	evt, partition, ok := FromWire(event.Send{Message: msg})
	req.True(ok)
	req.Equal(PartitionSend, partition)
	req.Equal(Send{Message: msg}, evt)

	evt, partition, ok = FromWire(event.Update{Message: msg})
	req.True(ok)
	req.Equal(PartitionUpdate, partition)
	req.Equal(Update{Message: msg}, evt)

	evt, partition, ok = FromWire(event.Delete{IDs: ids})
	req.True(ok)
	req.Equal(PartitionDelete, partition)
	req.Equal(Delete{IDs: ids}, evt)

	// Seen becomes MarkAsSeen
	evt, partition, ok = FromWire(event.Seen{IDs: ids})
	req.True(ok)
	req.Equal(PartitionSeen, partition)
	req.Equal(MarkAsSeen{IDs: ids}, evt)
}

func TestFromWire_LiveOnlyVariantsHaveNoDurableForm(t *testing.T) {
	req := require.New(t)

	for _, evt := range []event.WireEvent{event.Typing{}, event.Ping{}, event.Pong{}, event.Close{}} {
		_, _, ok := FromWire(evt)
		req.False(ok, "%T must stay live-only", evt)
	}
}

func TestDurable_RoundTrip(t *testing.T) {
	req := require.New(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	payload, err := Encode(MarkAsSeen{IDs: ids})
	req.NoError(err)
	req.JSONEq(`{"MarkAsSeen":["`+ids[0].String()+`","`+ids[1].String()+`"]}`, string(payload))

	decoded, err := Decode(payload)
	req.NoError(err)
	req.Equal(MarkAsSeen{IDs: ids}, decoded)
}

func TestDurable_DecodeRejectsUnknownVariant(t *testing.T) {
	req := require.New(t)

	// Seen is a wire variant; the durable form is MarkAsSeen only
	_, err := Decode([]byte(`{"Seen":["` + uuid.NewString() + `"]}`))

	req.ErrorIs(err, apperrors.ErrMalformedEntry)
}
