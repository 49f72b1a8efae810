package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "github.com/oksasatya/go-ddd-todo/internal/interface/http"
)

// OpsModule exposes health probes and, when a registry is set, Prometheus metrics.
type OpsModule struct {
	Health  *handlers.HealthHandler
	Metrics *prometheus.Registry
}

func NewOpsModule(h *handlers.HealthHandler, reg *prometheus.Registry) *OpsModule {
	return &OpsModule{Health: h, Metrics: reg}
}

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Health.Live)
	rg.GET("/readyz", m.Health.Ready)
	if m.Metrics != nil {
		rg.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Metrics, promhttp.HandlerOpts{})))
	}
}
