package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-todo/internal/interface/http"
)

// ListModule: GET/POST/DELETE /api/lists, all protected.
type ListModule struct {
	Handler *handlers.ListHandler
	Protect []gin.HandlerFunc
}

func NewListModule(h *handlers.ListHandler, protect ...gin.HandlerFunc) *ListModule {
	return &ListModule{Handler: h, Protect: protect}
}

func (m *ListModule) Register(rg *gin.RouterGroup) {
	lists := rg.Group("/lists", m.Protect...)
	{
		lists.GET("", m.Handler.List)
		lists.POST("", m.Handler.Create)
		lists.DELETE("", m.Handler.Delete)
	}
}
