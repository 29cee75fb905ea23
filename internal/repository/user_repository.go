package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storytime-server/internal/model"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository создает новый репозиторий пользователей поверх PostgreSQL
func NewPgUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

// CreateUser создает нового пользователя в базе данных
func (r *pgUserRepository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	query := `
		INSERT INTO users (id, username, password, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password, created_at`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	row := r.pool.QueryRow(ctx, query, user.ID, user.Username, user.Password, user.CreatedAt)

	var created model.User
	if err := row.Scan(&created.ID, &created.Username, &created.Password, &created.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		// 23505 - unique_violation (дубликат username)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, model.ErrUserAlreadyExists
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetUser получает пользователя по ID
func (r *pgUserRepository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT id, username, password, created_at FROM users WHERE id = $1`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername получает пользователя по имени пользователя
func (r *pgUserRepository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT id, username, password, created_at FROM users WHERE username = $1`

	var user model.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}
