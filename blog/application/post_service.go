package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PostService validates and executes post mutations against the repository
// and announces each confirmed mutation through the notifier. Announcements
// happen strictly after the store call succeeds, in completion order.
type PostService struct {
	repo      domain.PostRepository
	generator DraftGenerator
	notifier  ChangeNotifier

	// persistGenerated controls whether a generated draft is published
	// immediately or handed back for client review.
	persistGenerated bool

	now   func() time.Time
	newID func() string
}

func NewPostService(repo domain.PostRepository, generator DraftGenerator, notifier ChangeNotifier, persistGenerated bool) *PostService {
	return &PostService{
		repo:             repo,
		generator:        generator,
		notifier:         notifier,
		persistGenerated: persistGenerated,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

// CreatePost publishes a draft as a new post owned by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID string, draft domain.Draft) (*domain.Post, error) {
	if authorID == "" || !draft.Complete() {
		return nil, domain.ErrValidation
	}

	now := s.now()
	post := &domain.Post{
		ID:        s.newID(),
		AuthorID:  authorID,
		Heading:   strings.TrimSpace(draft.Heading),
		Body:      draft.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.notifier.AnnounceCreated(post)
	return post, nil
}

// GetPost fetches a single post. Reads are public.
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetPost(ctx, id)
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.ListPosts(ctx)
}

// ListPostsByAuthor returns one author's posts, newest first.
func (s *PostService) ListPostsByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	return s.repo.ListPostsByAuthor(ctx, authorID)
}

// UpdatePost applies a partial update on behalf of authorID. A post that is
// missing or owned by someone else yields domain.ErrPostNotFound.
func (s *PostService) UpdatePost(ctx context.Context, id, authorID string, upd domain.PostUpdate) (*domain.Post, error) {
	if upd.Heading != nil && strings.TrimSpace(*upd.Heading) == "" {
		return nil, domain.ErrValidation
	}
	if upd.Body != nil && strings.TrimSpace(*upd.Body) == "" {
		return nil, domain.ErrValidation
	}

	post, err := s.repo.UpdatePost(ctx, id, authorID, upd)
	if err != nil {
		return nil, err
	}

	s.notifier.AnnounceUpdated(post)
	return post, nil
}

// DeletePost removes a post on behalf of authorID and returns its last state.
func (s *PostService) DeletePost(ctx context.Context, id, authorID string) (*domain.Post, error) {
	post, err := s.repo.DeletePost(ctx, id, authorID)
	if err != nil {
		return nil, err
	}

	s.notifier.AnnounceDeleted(post.ID)
	return post, nil
}

// GenerateResult is the outcome of an AI-assisted creation. Post is non-nil
// only when the service is configured to persist generated drafts.
type GenerateResult struct {
	Draft     domain.Draft `json:"draft"`
	Post      *domain.Post `json:"post,omitempty"`
	Persisted bool         `json:"persisted"`
}

// Generate asks the draft generator for a candidate post about prompt and
// parses the response. Depending on configuration the draft is either
// persisted (and announced) immediately or returned for client review.
func (s *PostService) Generate(ctx context.Context, authorID, prompt string) (*GenerateResult, error) {
	if authorID == "" || strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrValidation
	}
	if s.generator == nil {
		return nil, domain.ErrGeneration
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Draft generator call failed")
		return nil, domain.ErrGeneration
	}

	draft := ParseDraft(raw)

	if !s.persistGenerated {
		return &GenerateResult{Draft: draft}, nil
	}

	if !draft.Complete() {
		log.Error().Str("raw", raw).Msg("Generator returned unusable content")
		return nil, domain.ErrGeneration
	}

	post, err := s.CreatePost(ctx, authorID, draft)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{Draft: draft, Post: post, Persisted: true}, nil
}
