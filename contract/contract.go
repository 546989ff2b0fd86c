//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/eventlog"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventLog is the append/read primitive over named log partitions.
// See the eventlog package for the semantics each backend guarantees.
type EventLog interface {
	Append(ctx context.Context, partition string, evt eventlog.Event) error
	Read(ctx context.Context, partition string, after eventlog.Cursor) ([]eventlog.Event, eventlog.Cursor, error)
	CommitCursor(ctx context.Context, partition, group string, cur eventlog.Cursor) error
	LoadCursor(ctx context.Context, partition, group string) (eventlog.Cursor, error)
}

// MessageStore is the persistence collaborator boundary. Every operation
// must be safe under concurrent invocation and tolerate being applied
// more than once for the same logical event.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg domain.MessageContent) error
	UpdateMessage(ctx context.Context, id uuid.UUID, content string) error
	DeleteMessages(ctx context.Context, ids []uuid.UUID) error
	MarkAsSeen(ctx context.Context, ids []uuid.UUID) error
}

// UserStore holds the accounts behind token issuance.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (domain.Account, error)
}
