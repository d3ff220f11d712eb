package screenplay

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationStatus string

const (
	GenerationNotStarted GenerationStatus = "NOT_STARTED"
	GenerationInProgress GenerationStatus = "IN_PROGRESS"
	GenerationCompleted  GenerationStatus = "COMPLETED"
	GenerationFailed     GenerationStatus = "FAILED"
)

const (
	TrackerScopeBeat = "beat"
	TrackerScopeAct  = "act"
)

// SceneGenerationTracker records description generation attempts. It is audit data only.
type SceneGenerationTracker struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ScriptID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"script_id"`
	Script       *Script          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScriptID;references:ID" json:"-"`
	BeatID       *uuid.UUID       `gorm:"type:uuid;index" json:"beat_id,omitempty"`
	Act          *BeatAct         `gorm:"column:act;size:16" json:"act,omitempty"`
	Scope        string           `gorm:"column:scope;size:16;not null" json:"scope"`
	Status       GenerationStatus `gorm:"column:status;size:16;not null;default:'NOT_STARTED'" json:"status"`
	AttemptCount int              `gorm:"column:attempt_count;not null;default:0" json:"attempt_count"`
	StartedAt    *time.Time       `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time       `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ErrorMessage *string          `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updated_at"`
}

func (SceneGenerationTracker) TableName() string { return "scene_generation_trackers" }

func (t *SceneGenerationTracker) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
