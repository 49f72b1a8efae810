package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/pkg/response"
	"github.com/oksasatya/go-ddd-todo/pkg/validation"
)

type ListHandler struct {
	Svc    *application.ListService
	Logger *logrus.Logger
}

func NewListHandler(svc *application.ListService, logger *logrus.Logger) *ListHandler {
	return &ListHandler{Svc: svc, Logger: logger}
}

type createListRequest struct {
	Name string `json:"name" binding:"title"`
}

// List godoc
// GET /api/lists
func (h *ListHandler) List(c *gin.Context) {
	lists, err := h.Svc.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListResponse(l))
	}
	response.SuccessList(c, http.StatusOK, out, "ok", nil)
}

// Create godoc
// POST /api/lists
func (h *ListHandler) Create(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	l, err := h.Svc.Create(c.Request.Context(), c.GetString(ctxUserID), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toListResponse(*l), "list created", nil)
}

// Delete godoc
// DELETE /api/lists?id=<listId>
// Removes the list and every task filed under it.
func (h *ListHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{"id": "is required"})
		return
	}
	res, err := h.Svc.Delete(c.Request.Context(), c.GetString(ctxUserID), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "list deleted", nil)
}
