package rest

import (
	"github.com/dfryer1193/blogwire/internal/auth"
	"github.com/dfryer1193/blogwire/internal/middleware"
	"github.com/dfryer1193/blogwire/internal/realtime"
	"github.com/gin-gonic/gin"
)

// NewApi wires every route onto the router. Post reads are public; mutations
// and author-scoped views sit behind the session middleware. The websocket
// endpoint is public so viewers can follow changes without an account.
func NewApi(router *gin.Engine, posts *PostHandler, authHandler *AuthHandler, resolver auth.Resolver, hub *realtime.Hub, allowedOrigin string) {
	requireAuth := middleware.RequireAuth(resolver)

	authAPI := router.Group("api/auth")
	{
		authAPI.POST("/signup", authHandler.Signup)
		authAPI.POST("/login", authHandler.Login)
		authAPI.POST("/logout", authHandler.Logout)
		authAPI.GET("/check", requireAuth, authHandler.Check)
	}

	postsAPI := router.Group("api/posts")
	{
		postsAPI.GET("", posts.GetPosts)
		postsAPI.GET("/:postId", posts.GetPost)

		postsAPI.POST("", requireAuth, posts.CreatePost)
		postsAPI.PUT("/:postId", requireAuth, posts.UpdatePost)
		postsAPI.DELETE("/:postId", requireAuth, posts.DeletePost)
		postsAPI.GET("/author/:userId", requireAuth, posts.GetPostsByAuthor)
		postsAPI.POST("/generate", requireAuth, posts.Generate)
	}

	router.GET("/ws", realtime.Handler(hub, allowedOrigin))
}
