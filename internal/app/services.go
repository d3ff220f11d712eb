package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type Services struct {
	Auth             services.AuthService
	Usage            services.UsageService
	Script           services.ScriptService
	BeatSheet        services.BeatSheetService
	SceneDescription services.SceneDescriptionService
	Generation       services.GenerationService
	Transform        services.TransformService
	ScriptSync       services.ScriptSyncService
	Segment          services.SegmentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, clients Clients) Services {
	log.Info("Wiring services...")

	usage := services.NewUsageService(log, r.Usage, r.Subscription, services.UsageConfig{
		FreeCallLimit: cfg.FreeTierCallLimit,
		ResetInterval: billing.ResetInterval(cfg.FreeTierResetInterval),
	})
	resolver := services.NewNextTargetResolver(log, r.Target)
	descriptions := services.NewSceneDescriptionService(db, log, clients.LLM, usage, resolver, r)

	return Services{
		Auth:             services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTAudience),
		Usage:            usage,
		Script:           services.NewScriptService(db, log, r),
		BeatSheet:        services.NewBeatSheetService(db, log, clients.LLM, usage, r),
		SceneDescription: descriptions,
		Generation: services.NewGenerationService(
			db, log, clients.LLM, usage, resolver, descriptions, clients.Locker, cfg.GenerationLockTTL, r,
		),
		Transform:  services.NewTransformService(db, log, clients.LLM, usage, r),
		ScriptSync: services.NewScriptSyncService(db, log, r),
		Segment:    services.NewSegmentService(db, log, r),
	}
}
