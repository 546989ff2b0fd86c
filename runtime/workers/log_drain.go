package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/eventlog"
	"chat-relay/observability"
)

// LogDrainWorker drains one log partition into the message store.
//
// Each tick reads everything past the group's committed cursor and
// dispatches every event to its persistence operation without waiting
// for completion: operations run concurrently with each other and with
// the next tick, and a hung call stalls only itself. A read failure
// skips the tick; the entries stay in the partition for the next one.
type LogDrainWorker struct {
	log       *slog.Logger
	events    contract.EventLog
	store     contract.MessageStore
	partition string
	group     string
	interval  time.Duration
}

func NewLogDrainWorker(
	log *slog.Logger,
	events contract.EventLog,
	store contract.MessageStore,
	partition, group string,
	interval time.Duration,
) *LogDrainWorker {
	return &LogDrainWorker{
		log:       log,
		events:    events,
		store:     store,
		partition: partition,
		group:     group,
		interval:  interval,
	}
}

func (w *LogDrainWorker) Run(ctx context.Context) error {
	w.log.Info("Starting log drain worker",
		"partition", w.partition, "group", w.group, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick performs one drain pass. Exported so tests drive passes without
// waiting on the ticker.
func (w *LogDrainWorker) Tick(ctx context.Context) {
	cursor, err := w.events.LoadCursor(ctx, w.partition, w.group)
	if err != nil {
		w.log.Debug("Cursor load failed, skipping tick", "partition", w.partition, "error", err)
		observability.WorkerTicksSkipped.WithLabelValues(w.partition).Inc()
		return
	}

	events, next, err := w.events.Read(ctx, w.partition, cursor)
	if err != nil {
		w.log.Debug("Log read failed, skipping tick", "partition", w.partition, "error", err)
		observability.WorkerTicksSkipped.WithLabelValues(w.partition).Inc()
		return
	}
	if len(events) == 0 {
		return
	}

	for _, evt := range events {
		go w.dispatch(ctx, evt)
	}

	if err := w.events.CommitCursor(ctx, w.partition, w.group, next); err != nil {
		// Entries past the old cursor will be redelivered next tick;
		// the store operations are idempotent, so this only costs work.
		w.log.Warn("Cursor commit failed", "partition", w.partition, "error", err)
	}
}

// dispatch resolves one durable event to exactly one persistence
// operation. Failures are observed, never retried; one failed write
// does not block the others dispatched in the same tick.
func (w *LogDrainWorker) dispatch(ctx context.Context, evt eventlog.Event) {
	var err error
	switch e := evt.(type) {
	case eventlog.Send:
		err = w.store.InsertMessage(ctx, e.Message)
	case eventlog.Update:
		err = w.store.UpdateMessage(ctx, e.Message.ID, e.Message.Content)
	case eventlog.Delete:
		err = w.store.DeleteMessages(ctx, e.IDs)
	case eventlog.MarkAsSeen:
		err = w.store.MarkAsSeen(ctx, e.IDs)
	default:
		w.log.Error("Unhandled durable event", "partition", w.partition, "event", evt)
		return
	}

	observability.WorkerDispatches.WithLabelValues(w.partition).Inc()
	if err != nil {
		observability.WorkerDispatchFailures.WithLabelValues(w.partition).Inc()
		w.log.Warn("Persistence operation failed", "partition", w.partition, "error", err)
	}
}
