package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/internal/models"
	"github.com/secretwall/secretwall/pkg/logger"
)

// UserKey is the gin context key holding the *models.User of the request.
const UserKey = "user"

// Resolver is the minimal interface the middleware depends on: it restores
// the user behind the request's session, or (nil, nil) for anonymous visitors.
type Resolver interface {
	CurrentUser(c *gin.Context) (*models.User, error)
}

// LoadUser restores the current user on every request. Failures are logged
// and the request continues as anonymous.
func LoadUser(res Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := res.CurrentUser(c)
		if err != nil {
			logger.Warnf("restore session for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		if u != nil {
			c.Set(UserKey, u)
		}
		c.Next()
	}
}

// RequireUser redirects anonymous visitors to loginPath.
func RequireUser(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFrom(c); !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFrom returns the user set by LoadUser.
func UserFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
