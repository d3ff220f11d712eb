package domain

import (
	"github.com/yungbote/screenplay-backend/internal/domain/billing"
	"github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

type (
	Script                    = screenplay.Script
	MasterBeatSheet           = screenplay.MasterBeatSheet
	Beat                      = screenplay.Beat
	SceneDescription          = screenplay.SceneDescription
	SceneSegment              = screenplay.SceneSegment
	SceneSegmentComponent     = screenplay.SceneSegmentComponent
	ComponentAlternative      = screenplay.ComponentAlternative
	ComponentSelectionHistory = screenplay.ComponentSelectionHistory
	SceneGenerationTracker    = screenplay.SceneGenerationTracker

	AIUsageLog       = billing.AIUsageLog
	SubscriptionPlan = billing.SubscriptionPlan
	UserSubscription = billing.UserSubscription
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&Script{},
		&MasterBeatSheet{},
		&Beat{},
		&SceneDescription{},
		&SceneSegment{},
		&SceneSegmentComponent{},
		&ComponentAlternative{},
		&ComponentSelectionHistory{},
		&SceneGenerationTracker{},
		&SubscriptionPlan{},
		&UserSubscription{},
		&AIUsageLog{},
	}
}
