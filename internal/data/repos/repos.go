package repos

import (
	"github.com/yungbote/screenplay-backend/internal/data/repos/billing"
	"github.com/yungbote/screenplay-backend/internal/data/repos/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ScriptRepo = screenplay.ScriptRepo
type MasterBeatSheetRepo = screenplay.MasterBeatSheetRepo
type BeatRepo = screenplay.BeatRepo
type SceneDescriptionRepo = screenplay.SceneDescriptionRepo
type SceneSegmentRepo = screenplay.SceneSegmentRepo
type ComponentRepo = screenplay.ComponentRepo
type AlternativeRepo = screenplay.AlternativeRepo
type SelectionHistoryRepo = screenplay.SelectionHistoryRepo
type TrackerRepo = screenplay.TrackerRepo
type TargetRepo = screenplay.TargetRepo

type UsageRepo = billing.UsageRepo
type SubscriptionRepo = billing.SubscriptionRepo

type ScriptListFilter = screenplay.ScriptListFilter
type SegmentListFilter = screenplay.SegmentListFilter

var (
	Live   = screenplay.Live
	LiveIn = screenplay.LiveIn
)

// Set is every repo, constructed once in app wiring and in service tests.
type Set struct {
	Script           ScriptRepo
	MasterBeatSheet  MasterBeatSheetRepo
	Beat             BeatRepo
	SceneDescription SceneDescriptionRepo
	SceneSegment     SceneSegmentRepo
	Component        ComponentRepo
	Alternative      AlternativeRepo
	SelectionHistory SelectionHistoryRepo
	Tracker          TrackerRepo
	Target           TargetRepo
	Usage            UsageRepo
	Subscription     SubscriptionRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Script:           screenplay.NewScriptRepo(db, log),
		MasterBeatSheet:  screenplay.NewMasterBeatSheetRepo(db, log),
		Beat:             screenplay.NewBeatRepo(db, log),
		SceneDescription: screenplay.NewSceneDescriptionRepo(db, log),
		SceneSegment:     screenplay.NewSceneSegmentRepo(db, log),
		Component:        screenplay.NewComponentRepo(db, log),
		Alternative:      screenplay.NewAlternativeRepo(db, log),
		SelectionHistory: screenplay.NewSelectionHistoryRepo(db, log),
		Tracker:          screenplay.NewTrackerRepo(db, log),
		Target:           screenplay.NewTargetRepo(db, log),
		Usage:            billing.NewUsageRepo(db, log),
		Subscription:     billing.NewSubscriptionRepo(db, log),
	}
}
