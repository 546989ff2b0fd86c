package repositories

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

// UserRepository implements contract.UserStore on Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, log *slog.Logger) UserRepository {
	return UserRepository{pool: pool, log: log}
}

// CreateUser persists a new account and returns its generated ID. A
// duplicate email surfaces as ErrUserAlreadyExists.
func (r UserRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
	`, id, name, email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is Postgres unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, apperrors.ErrUserAlreadyExists
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r UserRepository) GetUserByEmail(ctx context.Context, email string) (domain.Account, error) {
	var account domain.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
