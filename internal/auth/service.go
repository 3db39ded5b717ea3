// Package auth implements signup, login and session resolution. The rest of
// the system only sees the Resolver interface; credential handling stays in
// here.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "blogwire_session"

	// SessionTTL bounds how long a login lasts.
	SessionTTL = 7 * 24 * time.Hour

	minPasswordLength = 6
	tokenBytes        = 32
)

// Resolver turns a session token into the logged-in user.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type Service struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	now      func() time.Time
}

func NewService(users domain.UserRepository, sessions domain.SessionRepository) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a new account and logs it in.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*domain.User, *domain.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || len(password) < minPasswordLength {
		return nil, nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Login checks credentials and opens a new session. Unknown emails and wrong
// passwords are reported identically.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, domain.ErrValidation
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout removes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

// Resolve returns the user behind a session token.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, session.UserID)
}

func (s *Service) createSession(ctx context.Context, userID string) (*domain.Session, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		Token:     hex.EncodeToString(buf),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
