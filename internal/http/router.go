package http

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	httpH "github.com/yungbote/screenplay-backend/internal/http/handlers"
	httpMW "github.com/yungbote/screenplay-backend/internal/http/middleware"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware
	AIGuard        *httpMW.AIGuard
	// RateLimit guards the AI endpoints; nil disables it.
	RateLimit   gin.HandlerFunc
	CORSOrigins []string

	Metrics        *observability.Metrics
	MetricsEnabled bool
	TracingEnabled bool
	ServiceName    string

	EnableTestEndpoints bool

	HealthHandler           *httpH.HealthHandler
	ScriptHandler           *httpH.ScriptHandler
	BeatSheetHandler        *httpH.BeatSheetHandler
	SceneDescriptionHandler *httpH.SceneDescriptionHandler
	SegmentHandler          *httpH.SegmentHandler
	GenerationHandler       *httpH.GenerationHandler
	TransformHandler        *httpH.TransformHandler
	ScriptSyncHandler       *httpH.ScriptSyncHandler
	UsageHandler            *httpH.UsageHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "screenplay-backend"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Inflight(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// registers its middleware and GET /metrics; must precede the routes it should count
	if cfg.MetricsEnabled {
		p := ginprometheus.NewPrometheus("screenplay_http")
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return observability.RouteLabel(c.FullPath())
		}
		p.Use(r)
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Plans are public so the pricing page renders before sign-in.
	if cfg.UsageHandler != nil {
		api.GET("/pricing/plans", cfg.UsageHandler.Plans)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// ai chains the free-tier guard and the rate limiter in front of endpoints that call the model.
	ai := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, 3)
		if cfg.RateLimit != nil {
			chain = append(chain, cfg.RateLimit)
		}
		if cfg.AIGuard != nil {
			chain = append(chain, cfg.AIGuard.Require())
		}
		return append(chain, h)
	}

	// Scripts
	if h := cfg.ScriptHandler; h != nil {
		protected.POST("/scripts", h.Create)
		protected.GET("/scripts", h.List)
		protected.GET("/scripts/:id", h.Get)
		protected.PUT("/scripts/:id", h.Update)
		protected.DELETE("/scripts/:id", h.Delete)
	}

	// Beat sheets
	if h := cfg.BeatSheetHandler; h != nil {
		protected.GET("/master-beat-sheets", h.ListMasterBeatSheets)
		protected.POST("/scripts/with-ai", ai(h.CreateWithAI)...)
		protected.GET("/scripts/:id/beatsheet", h.GetBeatSheet)
		protected.PATCH("/beats/:id", h.UpdateBeat)
		if cfg.EnableTestEndpoints {
			protected.POST("/test/beat-generation", ai(h.TestGenerate)...)
			protected.POST("/test/beat-generation/stream", ai(h.StreamTestGenerate)...)
		}
	}

	// Scene descriptions
	if h := cfg.SceneDescriptionHandler; h != nil {
		protected.POST("/scene-descriptions/beat", ai(h.GenerateForBeat)...)
		protected.GET("/scene-descriptions/beat/:id", h.ListForBeat)
		protected.PATCH("/scene-descriptions/:id", h.Update)
		protected.DELETE("/scene-descriptions/:id", h.Delete)
	}

	// Scene segments and components
	if h := cfg.SegmentHandler; h != nil {
		protected.POST("/scene-segments", h.Create)
		protected.POST("/scene-segments/reorder", h.Reorder)
		protected.POST("/scene-segments/batch", h.BatchCreate)
		protected.POST("/scene-segments/from-text", h.CreateFromText)
		protected.GET("/scene-segments/:id", h.Get)
		protected.PATCH("/scene-segments/:id", h.Update)
		protected.DELETE("/scene-segments/:id", h.Delete)
		protected.POST("/scene-segments/:id/components", h.AddComponent)
		protected.POST("/scene-segments/:id/components/batch", h.BatchUpdateComponents)
		protected.POST("/scene-segments/:id/autosave", h.Autosave)
		protected.GET("/scene-segments/:id/next-component-position", h.NextComponentPosition)
		protected.POST("/scene-segments/components/reorder", h.ReorderComponent)
		protected.PATCH("/scene-segments/components/:id", h.UpdateComponent)
		protected.DELETE("/scene-segments/components/:id", h.DeleteComponent)
		protected.POST("/scene-segments/components/:id/auto-format", h.AutoFormat)
		protected.GET("/scene-segments/script/:id", h.ListForScript)
		protected.GET("/scene-segments/script/:id/next-segment-number", h.NextSegmentNumber)
		protected.GET("/scene-segments/script/:id/export", h.Export)
	}

	// Generation
	if h := cfg.GenerationHandler; h != nil {
		protected.POST("/scene-segments/ai/generate-next", ai(h.GenerateNext)...)
		protected.POST("/scene-segments/ai/get-or-generate-first", ai(h.GetOrGenerateFirst)...)
	}

	// Sync
	if h := cfg.ScriptSyncHandler; h != nil {
		protected.PUT("/scene-segments/:id/changes", h.ApplyChanges)
	}

	// Transforms
	if h := cfg.TransformHandler; h != nil {
		transforms := []struct {
			kind  domain.TransformKind
			verb  string
			apply string
		}{
			{domain.TransformShorten, "shorten", "apply-shortened"},
			{domain.TransformRewrite, "rewrite", "apply-rewrite"},
			{domain.TransformExpand, "expand", "apply-expanded"},
			{domain.TransformContinue, "continue", "apply-continuation"},
		}
		for _, t := range transforms {
			protected.POST("/scene-segments/components/:id/"+t.verb, ai(h.Transform(t.kind))...)
			protected.POST("/scene-segments/components/:id/"+t.apply, h.Apply(t.kind))
		}
		protected.POST("/scene-segments/components/:id/apply-transform", h.ApplyTransform)
	}

	// Usage
	if h := cfg.UsageHandler; h != nil {
		protected.GET("/usage/summary", h.Summary)
		protected.GET("/pricing/status", h.PricingStatus)
	}

	return r
}
