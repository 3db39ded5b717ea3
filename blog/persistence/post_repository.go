package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/shared/db"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: db,
	}
}

const insertPostQuery = `
	INSERT INTO posts (id, author_id, heading, body, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

// CreatePost persists a new post. ID and timestamps are expected to be set by
// the caller.
func (r *SQLitePostRepository) CreatePost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, insertPostQuery,
		p.ID,
		p.AuthorID,
		p.Heading,
		p.Body,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

const getPostQuery = `
	SELECT id, author_id, heading, body, created_at, updated_at
	FROM posts
	WHERE id = ?
`

// GetPost retrieves a single post by ID
func (r *SQLitePostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if id == "" {
		return nil, fmt.Errorf("post ID cannot be empty")
	}

	executor := db.GetExecutor(ctx, r.db)

	var row postRow
	err := executor.QueryRowContext(ctx, getPostQuery, id).Scan(
		&row.ID,
		&row.AuthorID,
		&row.Heading,
		&row.Body,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrPostNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain(), nil
}

const listPostsQuery = `
	SELECT id, author_id, heading, body, created_at, updated_at
	FROM posts
	ORDER BY created_at DESC
`

// ListPosts retrieves every post, newest first.
func (r *SQLitePostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return r.queryPosts(ctx, listPostsQuery)
}

const listPostsByAuthorQuery = `
	SELECT id, author_id, heading, body, created_at, updated_at
	FROM posts
	WHERE author_id = ?
	ORDER BY created_at DESC
`

// ListPostsByAuthor retrieves one author's posts, newest first.
func (r *SQLitePostRepository) ListPostsByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	if authorID == "" {
		return nil, fmt.Errorf("author ID cannot be empty")
	}

	return r.queryPosts(ctx, listPostsByAuthorQuery, authorID)
}

func (r *SQLitePostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		err := rows.Scan(
			&row.ID,
			&row.AuthorID,
			&row.Heading,
			&row.Body,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

const getOwnedPostQuery = `
	SELECT id, author_id, heading, body, created_at, updated_at
	FROM posts
	WHERE id = ? AND author_id = ?
`

const updatePostQuery = `
	UPDATE posts
	SET heading = ?, body = ?, updated_at = ?
	WHERE id = ? AND author_id = ?
`

// UpdatePost applies a partial update to a post owned by authorID. The
// ownership check rides in the WHERE clause, so a post owned by someone else
// is indistinguishable from a missing one.
func (r *SQLitePostRepository) UpdatePost(ctx context.Context, id, authorID string, upd domain.PostUpdate) (*domain.Post, error) {
	if id == "" || authorID == "" {
		return nil, fmt.Errorf("post ID and author ID cannot be empty")
	}

	var updated *domain.Post
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		current, err := r.getOwned(txCtx, id, authorID)
		if err != nil {
			return err
		}

		if upd.Heading != nil {
			current.Heading = *upd.Heading
		}
		if upd.Body != nil {
			current.Body = *upd.Body
		}
		current.UpdatedAt = time.Now().UTC()

		executor := db.GetExecutor(txCtx, r.db)
		_, err = executor.ExecContext(txCtx, updatePostQuery,
			current.Heading,
			current.Body,
			current.UpdatedAt,
			id,
			authorID,
		)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

const deletePostQuery = `
	DELETE FROM posts
	WHERE id = ? AND author_id = ?
`

// DeletePost removes a post owned by authorID and returns its final state,
// with the same ownership rule as UpdatePost.
func (r *SQLitePostRepository) DeletePost(ctx context.Context, id, authorID string) (*domain.Post, error) {
	if id == "" || authorID == "" {
		return nil, fmt.Errorf("post ID and author ID cannot be empty")
	}

	var deleted *domain.Post
	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		current, err := r.getOwned(txCtx, id, authorID)
		if err != nil {
			return err
		}

		executor := db.GetExecutor(txCtx, r.db)
		if _, err := executor.ExecContext(txCtx, deletePostQuery, id, authorID); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		deleted = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (r *SQLitePostRepository) getOwned(ctx context.Context, id, authorID string) (*domain.Post, error) {
	executor := db.GetExecutor(ctx, r.db)

	var row postRow
	err := executor.QueryRowContext(ctx, getOwnedPostQuery, id, authorID).Scan(
		&row.ID,
		&row.AuthorID,
		&row.Heading,
		&row.Body,
		&row.CreatedAt,
		&row.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrPostNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain(), nil
}

// postRow is a private struct used to scan database rows
type postRow struct {
	ID        string       `db:"id"`
	AuthorID  string       `db:"author_id"`
	Heading   string       `db:"heading"`
	Body      string       `db:"body"`
	CreatedAt sql.NullTime `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

// toDomain converts a postRow to a domain.Post, handling nullable times
func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:       pr.ID,
		AuthorID: pr.AuthorID,
		Heading:  pr.Heading,
		Body:     pr.Body,
	}

	if pr.CreatedAt.Valid {
		post.CreatedAt = pr.CreatedAt.Time
	}
	if pr.UpdatedAt.Valid {
		post.UpdatedAt = pr.UpdatedAt.Time
	}

	return post
}
