package repositories

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

// Exercised against a live database: set DATABASE_URL to run. The
// schema from migrations/001_messages.sql must be applied.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping repository tests")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
	t.Cleanup(pool.Close)
	return pool
}

func newMessage(content string) domain.MessageContent {
	return domain.MessageContent{
		ID:        uuid.New(),
		Content:   content,
		Author:    domain.User{ID: uuid.New(), Name: "tester", Email: "tester@chat.local"},
		Room:      uuid.New(),
		Status:    domain.StatusSent,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func fetchStatus(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var status int
	err := pool.QueryRow(context.Background(),
		"SELECT status FROM messages WHERE id = $1", id).Scan(&status)
	require.NoError(t, err)
	return status
}

func TestMessageRepository_InsertIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	pool := setupPool(t)
	repo := NewMessageRepository(pool, slog.Default())

	// Given a stored message
	msg := newMessage("first delivery")
	req.NoError(repo.InsertMessage(ctx, msg))

	// When the same event is applied again with different content
	redelivered := msg
	redelivered.Content = "second delivery"
	req.NoError(repo.InsertMessage(ctx, redelivered))

	// Then the original row wins
	var content string
	err := pool.QueryRow(ctx,
		"SELECT content FROM messages WHERE id = $1", msg.ID).Scan(&content)
	req.NoError(err)
	req.Equal("first delivery", content)
}

func TestMessageRepository_UpdateRewritesContent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	pool := setupPool(t)
	repo := NewMessageRepository(pool, slog.Default())

	msg := newMessage("before edit")
	req.NoError(repo.InsertMessage(ctx, msg))

	req.NoError(repo.UpdateMessage(ctx, msg.ID, "after edit"))

	var content string
	err := pool.QueryRow(ctx,
		"SELECT content FROM messages WHERE id = $1", msg.ID).Scan(&content)
	req.NoError(err)
	req.Equal("after edit", content)
}

func TestMessageRepository_DeleteRemovesOnlyTheNamedRows(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	pool := setupPool(t)
	repo := NewMessageRepository(pool, slog.Default())

	doomed := newMessage("delete me")
	kept := newMessage("keep me")
	req.NoError(repo.InsertMessage(ctx, doomed))
	req.NoError(repo.InsertMessage(ctx, kept))

	req.NoError(repo.DeleteMessages(ctx, []uuid.UUID{doomed.ID}))
	// Deleting again is a no-op, not an error
	req.NoError(repo.DeleteMessages(ctx, []uuid.UUID{doomed.ID}))

	var count int
	err := pool.QueryRow(ctx,
		"SELECT count(*) FROM messages WHERE id = $1", doomed.ID).Scan(&count)
	req.NoError(err)
	req.Zero(count)
	req.Equal(int(domain.StatusSent), fetchStatus(t, pool, kept.ID))
}

func TestMessageRepository_MarkAsSeenFlipsTheBatch(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	pool := setupPool(t)
	repo := NewMessageRepository(pool, slog.Default())

	first := newMessage("unread one")
	second := newMessage("unread two")
	untouched := newMessage("still unread")
	req.NoError(repo.InsertMessage(ctx, first))
	req.NoError(repo.InsertMessage(ctx, second))
	req.NoError(repo.InsertMessage(ctx, untouched))

	req.NoError(repo.MarkAsSeen(ctx, []uuid.UUID{first.ID, second.ID}))

	req.Equal(int(domain.StatusSeen), fetchStatus(t, pool, first.ID))
	req.Equal(int(domain.StatusSeen), fetchStatus(t, pool, second.ID))
	req.Equal(int(domain.StatusSent), fetchStatus(t, pool, untouched.ID))
}
