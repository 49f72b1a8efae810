package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-todo/pkg/response"
)

// Module is a feature area that mounts its routes on the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects the API-wide middlewares and feature modules, then mounts
// them all under /api in one pass.
type Registry struct {
	engine      *gin.Engine
	api         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{engine: engine, api: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll must run once, after every Use and Add. Unknown routes answer
// with the JSON envelope rather than gin's plain-text 404.
func (r *Registry) RegisterAll() {
	if r.mounted {
		panic("router: RegisterAll called twice")
	}
	r.mounted = true

	if len(r.middlewares) > 0 {
		r.api.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.api)
	}
	r.engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
}
