package rest

import (
	"net/http"

	"github.com/dfryer1193/blogwire/blog/application"
	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/internal/cache"
	"github.com/dfryer1193/blogwire/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PostHandler struct {
	posts *application.PostService
	cache *cache.PostCache
}

func NewPostHandler(posts *application.PostService, cache *cache.PostCache) *PostHandler {
	return &PostHandler{
		posts: posts,
		cache: cache,
	}
}

// GetPosts handles GET /api/posts. Public, newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, err := h.cache.GetAllPosts(ctx); err == nil && cached != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Posts fetched successfully", "data": cached})
		return
	}

	posts, err := h.posts.ListPosts(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cache.SetAllPosts(ctx, posts); err != nil {
		log.Warn().Err(err).Msg("Failed to cache post list")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Posts fetched successfully", "data": posts})
}

// GetPost handles GET /api/posts/:postId. Public.
func (h *PostHandler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("postId")

	if cached, err := h.cache.GetPost(ctx, postID); err == nil && cached != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Post fetched successfully", "data": cached})
		return
	}

	post, err := h.posts.GetPost(ctx, postID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.cache.SetPost(ctx, post); err != nil {
		log.Warn().Err(err).Msg("Failed to cache post")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post fetched successfully", "data": post})
}

// GetPostsByAuthor handles GET /api/posts/author/:userId.
func (h *PostHandler) GetPostsByAuthor(c *gin.Context) {
	posts, err := h.posts.ListPostsByAuthor(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Posts fetched successfully", "data": posts})
}

// CreatePost handles POST /api/posts.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var draft domain.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user := middleware.CurrentUser(c)
	post, err := h.posts.CreatePost(c.Request.Context(), user.ID, draft)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, "")
	c.JSON(http.StatusOK, gin.H{"message": "Post created successfully", "data": post})
}

// UpdatePost handles PUT /api/posts/:postId.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var upd domain.PostUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user := middleware.CurrentUser(c)
	post, err := h.posts.UpdatePost(c.Request.Context(), c.Param("postId"), user.ID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, post.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "data": post})
}

// DeletePost handles DELETE /api/posts/:postId.
func (h *PostHandler) DeletePost(c *gin.Context) {
	user := middleware.CurrentUser(c)
	post, err := h.posts.DeletePost(c.Request.Context(), c.Param("postId"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidate(c, post.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully", "data": post})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate handles POST /api/posts/generate.
func (h *PostHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Prompt is required"})
		return
	}

	user := middleware.CurrentUser(c)
	result, err := h.posts.Generate(c.Request.Context(), user.ID, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Persisted {
		h.invalidate(c, "")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft generated successfully", "data": result})
}

func (h *PostHandler) invalidate(c *gin.Context, postID string) {
	if err := h.cache.Invalidate(c.Request.Context(), postID); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate post cache")
	}
}
