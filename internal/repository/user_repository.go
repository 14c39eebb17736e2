package repository

import (
	"context"
	"strings"
	"time"

	"jobscout/internal/database"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	Upsert(ctx context.Context, username, passwordHash string) error
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		strings.TrimSpace(username))

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Upsert(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, created_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.New(), strings.TrimSpace(username), passwordHash, time.Now().UTC(),
	)
	return err
}
