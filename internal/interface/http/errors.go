package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/pkg/response"
)

const (
	ctxUserID    = "userID"
	ctxSessionID = "sessionID"
)

// writeError maps the service error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{ve.Field: ve.Message})
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"user_id":    c.GetString(ctxUserID),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
