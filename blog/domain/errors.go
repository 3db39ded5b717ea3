package domain

import "errors"

var (
	// ErrPostNotFound covers both "no such post" and "not your post".
	ErrPostNotFound = errors.New("post not found")

	// ErrValidation indicates a required field was missing or empty.
	ErrValidation = errors.New("all fields are required")

	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrGeneration indicates the upstream draft generator failed or returned
	// unusable content. Callers surface a generic message and may retry
	// manually.
	ErrGeneration = errors.New("failed to generate blog post")
)
