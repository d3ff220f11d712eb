package db

import (
	"fmt"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(

		// =========================
		// Script hierarchy
		// =========================
		&types.Script{},
		&types.MasterBeatSheet{},
		&types.Beat{},
		&types.SceneDescription{},
		&types.SceneSegment{},
		&types.SceneSegmentComponent{},

		// =========================
		// Component transforms
		// =========================
		&types.ComponentAlternative{},
		&types.ComponentSelectionHistory{},

		// =========================
		// Generation audit
		// =========================
		&types.SceneGenerationTracker{},

		// =========================
		// Usage + subscriptions
		// =========================
		&types.SubscriptionPlan{},
		&types.UserSubscription{},
		&types.AIUsageLog{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
