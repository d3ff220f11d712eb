package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apphttp "github.com/yungbote/screenplay-backend/internal/http"
	httpH "github.com/yungbote/screenplay-backend/internal/http/handlers"
	httpMW "github.com/yungbote/screenplay-backend/internal/http/middleware"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	AIGuard   *httpMW.AIGuard
	RateLimit gin.HandlerFunc
}

type Handlers struct {
	Health           *httpH.HealthHandler
	Script           *httpH.ScriptHandler
	BeatSheet        *httpH.BeatSheetHandler
	SceneDescription *httpH.SceneDescriptionHandler
	Segment          *httpH.SegmentHandler
	Generation       *httpH.GenerationHandler
	Transform        *httpH.TransformHandler
	ScriptSync       *httpH.ScriptSyncHandler
	Usage            *httpH.UsageHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, svc Services, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:    httpMW.NewAuthMiddleware(log, svc.Auth),
		AIGuard: httpMW.NewAIGuard(log, svc.Usage),
		RateLimit: httpMW.RateLimit(log, httpMW.RateLimitConfig{
			Window:      cfg.RateLimitWindow,
			MaxRequests: cfg.RateLimitMaxRequests,
			Redis:       clients.Redis,
		}),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:           httpH.NewHealthHandler(db),
		Script:           httpH.NewScriptHandler(log, svc.Script),
		BeatSheet:        httpH.NewBeatSheetHandler(log, svc.BeatSheet),
		SceneDescription: httpH.NewSceneDescriptionHandler(log, svc.SceneDescription),
		Segment:          httpH.NewSegmentHandler(log, svc.Segment),
		Generation:       httpH.NewGenerationHandler(log, svc.Generation),
		Transform:        httpH.NewTransformHandler(log, svc.Transform),
		ScriptSync:       httpH.NewScriptSyncHandler(log, svc.ScriptSync),
		Usage:            httpH.NewUsageHandler(log, svc.Usage),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                     log,
		AuthMiddleware:          mw.Auth,
		AIGuard:                 mw.AIGuard,
		RateLimit:               mw.RateLimit,
		CORSOrigins:             cfg.CORSOrigins(),
		Metrics:                 metrics,
		MetricsEnabled:          cfg.MetricsEnabled,
		TracingEnabled:          cfg.OtelEnabled,
		EnableTestEndpoints:     cfg.EnableTestEndpoints,
		HealthHandler:           h.Health,
		ScriptHandler:           h.Script,
		BeatSheetHandler:        h.BeatSheet,
		SceneDescriptionHandler: h.SceneDescription,
		SegmentHandler:          h.Segment,
		GenerationHandler:       h.Generation,
		TransformHandler:        h.Transform,
		ScriptSyncHandler:       h.ScriptSync,
		UsageHandler:            h.Usage,
	})
}
