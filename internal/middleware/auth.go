package middleware

import (
	"net/http"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/dfryer1193/blogwire/internal/auth"
	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// RequireAuth resolves the session cookie into a user and aborts with 401
// when there is no valid session.
func RequireAuth(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - please log in"})
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - please log in"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by RequireAuth, or nil on public routes.
func CurrentUser(c *gin.Context) *domain.User {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := val.(*domain.User)
	return user
}
