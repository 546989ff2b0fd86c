package repositories

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-relay/domain"
)

// MessageRepository implements contract.MessageStore on Postgres.
//
// The log workers may apply the same event more than once, so every
// operation here is idempotent: insert ignores a duplicate primary key,
// update/delete/mark-as-seen are naturally repeatable.
type MessageRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewMessageRepository(pool *pgxpool.Pool, log *slog.Logger) MessageRepository {
	return MessageRepository{pool: pool, log: log}
}

func (r MessageRepository) InsertMessage(ctx context.Context, msg domain.MessageContent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, content, author, room, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, msg.ID, msg.Content, msg.Author.ID, msg.Room, int(msg.Status), msg.CreatedAt)
	return err
}

func (r MessageRepository) UpdateMessage(ctx context.Context, id uuid.UUID, content string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET content = $1
		WHERE id = $2
	`, content, id)
	return err
}

func (r MessageRepository) DeleteMessages(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM messages
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r MessageRepository) MarkAsSeen(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET status = $1
		WHERE id = ANY($2)
	`, int(domain.StatusSeen), ids)
	return err
}
