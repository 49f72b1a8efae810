package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-ddd-todo/internal/interface/http"
	"github.com/oksasatya/go-ddd-todo/internal/interface/middleware"
)

// AuthModule wires the Google sign-in flow and the session endpoints.
// Public: GET /api/auth/google/login, GET /api/auth/google/callback, POST /api/auth/refresh
// Protected: POST /api/auth/logout, GET /api/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	Protect []gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, protect ...gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, Protect: protect}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/auth/google/login", loginLimiter, m.Handler.GoogleLogin)
	rg.GET("/auth/google/callback", loginLimiter, m.Handler.GoogleCallback)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/", m.Protect...)
	{
		auth.POST("/auth/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
