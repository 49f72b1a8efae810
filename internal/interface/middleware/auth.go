package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
	"github.com/oksasatya/go-ddd-todo/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
)

// IdentityResolver turns an access token into the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (application.Identity, error)
}

// Auth validates the access token (cookie first, then bearer header) and
// ensures the session it names is still active.
// It sets userID and sessionID in the Gin context on success.
func Auth(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			rejectCaller(c)
			return
		}
		id, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			rejectCaller(c)
			return
		}
		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxSessionIDKey, id.SessionID)
		c.Next()
	}
}

// rejectCaller answers every identity failure the same way, whether the token
// is absent, malformed, expired or names a closed session.
func rejectCaller(c *gin.Context) {
	response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	c.Abort()
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(helpers.AccessCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
