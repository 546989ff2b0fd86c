package eventlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "chat-relay/errors"
)

// RedisLog stores each partition as a Redis Stream. This is the
// production backend: appends are XADD, reads are XRANGE with an
// exclusive start, and cursors are the stream ID of the last entry a
// group consumed, kept in a plain key next to the stream.
type RedisLog struct {
	client *redis.Client
}

func NewRedisLog(ctx context.Context, redisURL string) (*RedisLog, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisLog{client: client}, nil
}

func (l *RedisLog) Close() error {
	return l.client.Close()
}

func (l *RedisLog) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLog) Append(ctx context.Context, partition string, evt Event) error {
	payload, err := Encode(evt)
	if err != nil {
		return err
	}
	return l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: partition,
		Values: map[string]any{EntryField: payload},
	}).Err()
}

func (l *RedisLog) Read(ctx context.Context, partition string, after Cursor) ([]Event, Cursor, error) {
	start := "-"
	if after != "" {
		// "(" makes the range start exclusive, so the entry the cursor
		// points at is not redelivered.
		start = "(" + string(after)
	}

	entries, err := l.client.XRange(ctx, partition, start, "+").Result()
	if err != nil {
		return nil, after, err
	}

	events := make([]Event, 0, len(entries))
	last := after
	for _, entry := range entries {
		raw, ok := entry.Values[EntryField]
		if !ok {
			return nil, after, fmt.Errorf("%w: entry %s has no %q field", apperrors.ErrMalformedEntry, entry.ID, EntryField)
		}
		payload, ok := raw.(string)
		if !ok {
			return nil, after, fmt.Errorf("%w: entry %s holds a non-string payload", apperrors.ErrMalformedEntry, entry.ID)
		}
		evt, err := Decode([]byte(payload))
		if err != nil {
			return nil, after, err
		}
		events = append(events, evt)
		last = Cursor(entry.ID)
	}
	return events, last, nil
}

func (l *RedisLog) CommitCursor(ctx context.Context, partition, group string, cur Cursor) error {
	return l.client.Set(ctx, cursorKey(partition, group), string(cur), 0).Err()
}

func (l *RedisLog) LoadCursor(ctx context.Context, partition, group string) (Cursor, error) {
	val, err := l.client.Get(ctx, cursorKey(partition, group)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Cursor(val), nil
}

func cursorKey(partition, group string) string {
	return fmt.Sprintf("%s:cursor:%s", partition, group)
}
