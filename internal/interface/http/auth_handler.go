package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
	"github.com/oksasatya/go-ddd-todo/pkg/response"
)

type AuthHandler struct {
	Svc         *application.AuthService
	Cookies     *helpers.Manager
	FrontendURL string
	Logger      *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, frontendURL string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, FrontendURL: strings.TrimRight(frontendURL, "/"), Logger: logger}
}

// GoogleLogin godoc
// GET /api/auth/google/login[?callbackUrl=/lists]
// Redirects the browser to the provider consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	target, err := h.Svc.BeginSignIn(c.Request.Context(), c.Query("callbackUrl"))
	if err != nil {
		if errors.Is(err, application.ErrProviderDisabled) {
			response.Error[any](c, http.StatusServiceUnavailable, "sign-in is not configured", nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GoogleCallback godoc
// GET /api/auth/google/callback?state=..&code=..
// Opens a session, sets the cookie pair and lands the browser on the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		h.redirectWithError(c, reason)
		return
	}
	u, pair, callback, err := h.Svc.CompleteSignIn(c.Request.Context(), c.Query("state"), c.Query("code"))
	switch {
	case err == nil:
	case errors.Is(err, application.ErrProviderDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "sign-in is not configured", nil)
		return
	case errors.Is(err, application.ErrInvalidState):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired sign-in state", nil)
		return
	case errors.Is(err, application.ErrSignInFailed):
		response.Error[any](c, http.StatusUnauthorized, "sign-in failed", nil)
		return
	default:
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"user_id": u.ID, "request_id": c.GetString("request_id")}).Info("user signed in")
	}
	c.Redirect(http.StatusFound, h.FrontendURL+callback)
}

func (h *AuthHandler) redirectWithError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.FrontendURL+"/?error="+url.QueryEscape(reason))
}

// Refresh godoc
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	rt, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || rt == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), rt)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, nil, "token refreshed", nil)
}

// Logout godoc
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString(ctxUserID), c.GetString(ctxSessionID)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Me godoc
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(*u), "ok", nil)
}
