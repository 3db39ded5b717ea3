package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/shared/db"
)

var (
	_ domain.UserRepository    = (*SQLiteUserRepository)(nil)
	_ domain.SessionRepository = (*SQLiteSessionRepository)(nil)
)

// SQLiteUserRepository implements domain.UserRepository using SQL database (SQLite)
type SQLiteUserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db: db,
	}
}

const insertUserQuery = `
	INSERT INTO users (id, name, email, password_hash, created_at)
	VALUES (?, ?, ?, ?, ?)
`

func (r *SQLiteUserRepository) CreateUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, insertUserQuery,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.CreatedAt,
	)
	if err != nil {
		// The unique index on email is the authority on duplicates.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

const getUserQuery = `
	SELECT id, name, email, password_hash, created_at
	FROM users
	WHERE id = ?
`

func (r *SQLiteUserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, getUserQuery, id)
}

const getUserByEmailQuery = `
	SELECT id, name, email, password_hash, created_at
	FROM users
	WHERE email = ?
`

func (r *SQLiteUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, getUserByEmailQuery, email)
}

func (r *SQLiteUserRepository) getUser(ctx context.Context, query, arg string) (*domain.User, error) {
	if arg == "" {
		return nil, fmt.Errorf("user lookup key cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)

	var u domain.User
	err := executor.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// SQLiteSessionRepository implements domain.SessionRepository using SQL database (SQLite)
type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{
		db: db,
	}
}

const insertSessionQuery = `
	INSERT INTO sessions (token, user_id, created_at, expires_at)
	VALUES (?, ?, ?, ?)
`

func (r *SQLiteSessionRepository) CreateSession(ctx context.Context, s *domain.Session) error {
	if s == nil || s.Token == "" {
		return fmt.Errorf("session token cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, insertSessionQuery,
		s.Token,
		s.UserID,
		s.CreatedAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

const getSessionQuery = `
	SELECT token, user_id, created_at, expires_at
	FROM sessions
	WHERE token = ?
`

// GetSession returns the session for token. Expired sessions are treated as
// missing and lazily removed.
func (r *SQLiteSessionRepository) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	executor := db.GetExecutor(ctx, r.db)

	var s domain.Session
	err := executor.QueryRowContext(ctx, getSessionQuery, token).Scan(
		&s.Token,
		&s.UserID,
		&s.CreatedAt,
		&s.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if time.Now().After(s.ExpiresAt) {
		_ = r.DeleteSession(ctx, token)
		return nil, domain.ErrSessionNotFound
	}

	return &s, nil
}

const deleteSessionQuery = `
	DELETE FROM sessions
	WHERE token = ?
`

func (r *SQLiteSessionRepository) DeleteSession(ctx context.Context, token string) error {
	executor := db.GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, deleteSessionQuery, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
