package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/eventlog"
	"chat-relay/mocks"
)

func newTestBadgerLog(t *testing.T) *eventlog.BadgerLog {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	log := eventlog.NewBadgerLog(db)
	t.Cleanup(func() {
		_ = log.Close()
		_ = db.Close()
	})
	return log
}

func TestLogDrainWorker_DispatchesEachVariantToItsOperation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logMock := mocks.NewMockEventLog(ctrl)
	storeMock := mocks.NewMockMessageStore(ctrl)

	msg := domain.MessageContent{ID: uuid.New(), Content: "hi"}
	updated := domain.MessageContent{ID: uuid.New(), Content: "edited"}
	deleted := []uuid.UUID{uuid.New()}
	seen := []uuid.UUID{uuid.New(), uuid.New()}

	// Given a partition holding one event of every durable kind
	logMock.EXPECT().LoadCursor(gomock.Any(), eventlog.PartitionSend, "relay").Return(eventlog.Cursor(""), nil)
	logMock.EXPECT().Read(gomock.Any(), eventlog.PartitionSend, eventlog.Cursor("")).Return(
		[]eventlog.Event{
			eventlog.Send{Message: msg},
			eventlog.Update{Message: updated},
			eventlog.Delete{IDs: deleted},
			eventlog.MarkAsSeen{IDs: seen},
		}, eventlog.Cursor("4"), nil)
	logMock.EXPECT().CommitCursor(gomock.Any(), eventlog.PartitionSend, "relay", eventlog.Cursor("4")).Return(nil)

	// Then every event reaches exactly one persistence operation
	done := make(chan string, 4)
	storeMock.EXPECT().InsertMessage(gomock.Any(), msg).DoAndReturn(
		func(context.Context, domain.MessageContent) error {
			done <- "insert"
			return nil
		})
	storeMock.EXPECT().UpdateMessage(gomock.Any(), updated.ID, "edited").DoAndReturn(
		func(context.Context, uuid.UUID, string) error {
			done <- "update"
			return nil
		})
	storeMock.EXPECT().DeleteMessages(gomock.Any(), deleted).DoAndReturn(
		func(context.Context, []uuid.UUID) error {
			done <- "delete"
			return nil
		})
	storeMock.EXPECT().MarkAsSeen(gomock.Any(), seen).DoAndReturn(
		func(context.Context, []uuid.UUID) error {
			done <- "seen"
			return nil
		})

	worker := NewLogDrainWorker(slog.Default(), logMock, storeMock, eventlog.PartitionSend, "relay", time.Second)

	// When one tick runs
	worker.Tick(ctx)

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			req.Fail("dispatch did not complete in time")
		}
	}
}

func TestLogDrainWorker_ReadFailureSkipsTheTick(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logMock := mocks.NewMockEventLog(ctrl)
	storeMock := mocks.NewMockMessageStore(ctrl)

	// Given a log that fails to read
	logMock.EXPECT().LoadCursor(gomock.Any(), eventlog.PartitionUpdate, "relay").Return(eventlog.Cursor(""), nil)
	logMock.EXPECT().Read(gomock.Any(), eventlog.PartitionUpdate, eventlog.Cursor("")).
		Return(nil, eventlog.Cursor(""), fmt.Errorf("log unreachable"))

	// Then nothing is dispatched and no cursor is committed (the mocks
	// reject any unexpected call)
	worker := NewLogDrainWorker(slog.Default(), logMock, storeMock, eventlog.PartitionUpdate, "relay", time.Second)
	worker.Tick(ctx)
}

func TestLogDrainWorker_EmptyReadCommitsNothing(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logMock := mocks.NewMockEventLog(ctrl)
	storeMock := mocks.NewMockMessageStore(ctrl)

	logMock.EXPECT().LoadCursor(gomock.Any(), eventlog.PartitionDelete, "relay").Return(eventlog.Cursor("7"), nil)
	logMock.EXPECT().Read(gomock.Any(), eventlog.PartitionDelete, eventlog.Cursor("7")).
		Return(nil, eventlog.Cursor("7"), nil)

	worker := NewLogDrainWorker(slog.Default(), logMock, storeMock, eventlog.PartitionDelete, "relay", time.Second)
	worker.Tick(ctx)
}

func TestLogDrainWorker_OneFailedWriteDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logMock := mocks.NewMockEventLog(ctrl)
	storeMock := mocks.NewMockMessageStore(ctrl)

	failing := domain.MessageContent{ID: uuid.New()}
	healthy := domain.MessageContent{ID: uuid.New()}

	logMock.EXPECT().LoadCursor(gomock.Any(), eventlog.PartitionSend, "relay").Return(eventlog.Cursor(""), nil)
	logMock.EXPECT().Read(gomock.Any(), eventlog.PartitionSend, eventlog.Cursor("")).Return(
		[]eventlog.Event{
			eventlog.Send{Message: failing},
			eventlog.Send{Message: healthy},
		}, eventlog.Cursor("2"), nil)
	logMock.EXPECT().CommitCursor(gomock.Any(), eventlog.PartitionSend, "relay", eventlog.Cursor("2")).Return(nil)

	done := make(chan uuid.UUID, 2)
	storeMock.EXPECT().InsertMessage(gomock.Any(), failing).DoAndReturn(
		func(context.Context, domain.MessageContent) error {
			done <- failing.ID
			return fmt.Errorf("constraint violation")
		})
	storeMock.EXPECT().InsertMessage(gomock.Any(), healthy).DoAndReturn(
		func(context.Context, domain.MessageContent) error {
			done <- healthy.ID
			return nil
		})

	worker := NewLogDrainWorker(slog.Default(), logMock, storeMock, eventlog.PartitionSend, "relay", time.Second)
	worker.Tick(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			req.Fail("dispatch did not complete in time")
		}
	}
}

// Drains a real badger-backed partition twice and checks the cursor
// prevents redelivery of already dispatched entries.
func TestLogDrainWorker_SecondTickRedeliversNothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := newTestBadgerLog(t)
	storeMock := mocks.NewMockMessageStore(ctrl)

	msg := domain.MessageContent{ID: uuid.New(), Content: "once"}
	req.NoError(log.Append(ctx, eventlog.PartitionSend, eventlog.Send{Message: msg}))

	inserted := make(chan struct{}, 1)
	storeMock.EXPECT().InsertMessage(gomock.Any(), msg).DoAndReturn(
		func(context.Context, domain.MessageContent) error {
			inserted <- struct{}{}
			return nil
		}).Times(1)

	worker := NewLogDrainWorker(slog.Default(), log, storeMock, eventlog.PartitionSend, "relay", time.Second)

	// First tick dispatches the entry and advances the cursor
	worker.Tick(ctx)
	select {
	case <-inserted:
	case <-time.After(time.Second):
		req.Fail("dispatch did not complete in time")
	}

	// Second tick finds nothing past the cursor; InsertMessage is
	// limited to one call, so a redelivery would fail the test
	worker.Tick(ctx)
}
