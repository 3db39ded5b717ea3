package domain

import (
	"context"
	"time"
)

// Post represents a blog post.
// Heading and Body are stored as raw text; rendering is a client concern.
// AuthorID is fixed at creation and is the sole authority for mutations.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Heading   string    `json:"heading"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostUpdate carries a partial update. Nil fields are left untouched.
type PostUpdate struct {
	Heading *string `json:"heading"`
	Body    *string `json:"body"`
}

type PostRepository interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*Post, error)

	// UpdatePost applies upd to the post with the given id, but only when it
	// is owned by authorID. A missing id and a mismatched author both yield
	// ErrPostNotFound so that non-owners cannot probe for existence.
	UpdatePost(ctx context.Context, id, authorID string, upd PostUpdate) (*Post, error)

	// DeletePost removes the post and returns its last persisted state,
	// subject to the same ownership rule as UpdatePost.
	DeletePost(ctx context.Context, id, authorID string) (*Post, error)
}
