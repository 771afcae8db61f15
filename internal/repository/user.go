package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cfo-ai/backend/internal/models"
)

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает пользователя с отраслью по умолчанию.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string, industry string) (models.User, error) {
	var user models.User
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name, industry)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password_hash, name, industry, created_at, updated_at`,
		email, passwordHash, name, industry,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &nameValue, &user.Industry, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	user.Name = nameValue
	return user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

// UpdateIndustry меняет отрасль пользователя и возвращает обновленную запись.
func (r *UserRepository) UpdateIndustry(ctx context.Context, id uuid.UUID, industry string) (models.User, error) {
	var user models.User
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET industry = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, email, password_hash, name, industry, created_at, updated_at`,
		id, industry,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &nameValue, &user.Industry, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	user.Name = nameValue
	return user, nil
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (models.User, error) {
	var user models.User
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, name, industry, created_at, updated_at
		 FROM users
		 WHERE `+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &nameValue, &user.Industry, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	user.Name = nameValue
	return user, nil
}
