package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/container"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/esindex"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/gcsavatar"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/googleauth"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/go-ddd-todo/internal/interface/http"
	"github.com/oksasatya/go-ddd-todo/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-todo/internal/router/modules"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

// Services are the application services shared by the HTTP modules.
type Services struct {
	Auth  *application.AuthService
	Lists *application.ListService
	Tasks *application.TaskService
}

// optional collaborators are left as nil interfaces when their backend is absent

func buildIndex() application.TaskIndexer {
	es := container.GetES()
	if es == nil {
		return nil
	}
	idx := esindex.NewTaskIndex(es, container.GetConfig().ESTasksIndex)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.EnsureIndex(ctx); err != nil {
		container.GetLogger().WithError(err).Warn("elasticsearch index not ready; search disabled")
		return nil
	}
	return idx
}

func buildEvents() application.EventPublisher {
	if p := container.GetEventsPub(); p != nil {
		return p
	}
	return nil
}

func buildAvatars() application.AvatarMirror {
	cfg := container.GetConfig()
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		return gcsavatar.NewMirror(gcs, cfg.GCSBucket)
	}
	return nil
}

func buildProvider() application.IdentityProvider {
	cfg := container.GetConfig()
	if !cfg.GoogleConfigured() {
		container.GetLogger().Warn("GOOGLE_CLIENT_ID/SECRET not set; sign-in disabled")
		return nil
	}
	return googleauth.NewProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
}

func buildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	records := container.GetStore()
	index := buildIndex()
	events := buildEvents()

	return Services{
		Auth: application.NewAuthService(
			records.Users,
			buildProvider(),
			redisstore.NewSessionStore(container.GetRedis()),
			container.GetJWT(),
			buildAvatars(),
			logger,
			cfg.SessionTTL,
		),
		Lists: application.NewListService(records.Lists, index, events, logger),
		Tasks: application.NewTaskService(records.Tasks, records.Lists, index, events, logger, cfg.EnforceListOwnership),
	}
}

// ipLimiterAllow lets probes and scrapes through the per-IP limiter, and
// private-network clients too when exemptPrivate is set.
func ipLimiterAllow(exemptPrivate bool) middleware.AllowFunc {
	probes := middleware.AllowPaths("/api/healthz", "/api/readyz", "/api/metrics")
	if !exemptPrivate {
		return probes
	}
	return middleware.AnyOf(probes, middleware.AllowPrivateIP())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	svc := buildServices()

	// every API request: real client ip, then the per-IP limiter
	r.Use(
		middleware.RealIP(),
		middleware.RateLimit(rdb, cfg.RateLimitPerSecond, time.Second, middleware.KeyByIP(),
			ipLimiterAllow(cfg.RateLimitExemptPrivate)),
	)

	protect := []gin.HandlerFunc{
		middleware.Auth(svc.Auth),
		middleware.RateLimit(rdb, cfg.RateLimitPerUser, time.Minute, middleware.KeyByUserID(), nil),
	}

	checks := map[string]handlers.Check{
		"store": container.GetStore().Ping,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error { return helpers.ESPing(ctx, es) }
	}

	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)
	r.Add(modules.NewOpsModule(handlers.NewHealthHandler(checks), container.GetMetrics()))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, cookies, cfg.FrontendURL, logger), rdb, protect...))
	r.Add(modules.NewListModule(handlers.NewListHandler(svc.Lists, logger), protect...))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(svc.Tasks, logger), protect...))
}
