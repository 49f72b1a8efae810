package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
	"github.com/oksasatya/go-ddd-todo/pkg/response"
	"github.com/oksasatya/go-ddd-todo/pkg/validation"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Title       string       `json:"title" binding:"title"`
	ListID      string       `json:"listId" binding:"objid"`
	DueDate     *jsonDate    `json:"dueDate"`
	Description *string      `json:"description" binding:"omitempty,max=2000"`
	Subtasks    []subtaskDTO `json:"subtasks"`
}

// updateTaskRequest distinguishes an absent field from an explicit null
// for dueDate and description.
type updateTaskRequest struct {
	ID          string                    `json:"id" binding:"objid"`
	Title       *string                   `json:"title"`
	Completed   *bool                     `json:"completed"`
	DueDate     entity.Nullable[jsonDate] `json:"dueDate"`
	Description entity.Nullable[string]   `json:"description"`
	Subtasks    *[]subtaskDTO             `json:"subtasks"`
}

type deleteTaskRequest struct {
	ID string `json:"id"`
}

func (r updateTaskRequest) patch() entity.TaskPatch {
	p := entity.TaskPatch{
		Title:       r.Title,
		Completed:   r.Completed,
		Description: r.Description,
	}
	if r.DueDate.Set {
		if d := r.DueDate.Value.ptr(); d != nil {
			p.DueDate = entity.Some(*d)
		} else {
			p.DueDate = entity.Null[time.Time]()
		}
	}
	if r.Subtasks != nil {
		subs := fromSubtaskDTOs(*r.Subtasks)
		p.Subtasks = &subs
	}
	return p
}

// List godoc
// GET /api/tasks[?listId=<id>]
func (h *TaskHandler) List(c *gin.Context) {
	var listID *string
	if v, ok := c.GetQuery("listId"); ok && strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		listID = &v
	}
	tasks, err := h.Svc.List(c.Request.Context(), c.GetString(ctxUserID), listID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	response.SuccessList(c, http.StatusOK, out, "ok", nil)
}

// Create godoc
// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	in := application.CreateTaskInput{
		Title:       req.Title,
		ListID:      req.ListID,
		DueDate:     req.DueDate.ptr(),
		Description: req.Description,
		Subtasks:    fromSubtaskDTOs(req.Subtasks),
	}
	t, err := h.Svc.Create(c.Request.Context(), c.GetString(ctxUserID), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toTaskResponse(*t), "task created", nil)
}

// Update godoc
// PUT /api/tasks
// Only the supplied fields change; null clears dueDate or description.
func (h *TaskHandler) Update(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), c.GetString(ctxUserID), req.ID, req.patch())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(*t), "task updated", nil)
}

// Delete godoc
// DELETE /api/tasks with body {"id": "<taskId>"} (or ?id=)
func (h *TaskHandler) Delete(c *gin.Context) {
	var req deleteTaskRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(err))
			return
		}
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(c.Query("id"))
	}
	if id == "" {
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{"id": "is required"})
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), c.GetString(ctxUserID), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id}, "task deleted", nil)
}

// Search godoc
// GET /api/tasks/search?q=<text>[&size=n]
func (h *TaskHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), c.GetString(ctxUserID), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.SuccessList(c, http.StatusOK, hits, "ok", nil)
}
