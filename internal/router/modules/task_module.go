package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-todo/internal/interface/http"
)

// TaskModule: task CRUD plus search under /api/tasks, all protected.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Protect []gin.HandlerFunc
}

func NewTaskModule(h *handlers.TaskHandler, protect ...gin.HandlerFunc) *TaskModule {
	return &TaskModule{Handler: h, Protect: protect}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks", m.Protect...)
	{
		tasks.GET("", m.Handler.List)
		tasks.POST("", m.Handler.Create)
		tasks.PUT("", m.Handler.Update)
		tasks.DELETE("", m.Handler.Delete)
		tasks.GET("/search", m.Handler.Search)
	}
}
