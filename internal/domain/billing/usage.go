package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AICallType string

const (
	CallBeatGeneration   AICallType = "beat_generation"
	CallSceneDescription AICallType = "scene_description"
	CallSceneSegment     AICallType = "scene_segment"
	CallShortening       AICallType = "shortening"
	CallRewriting        AICallType = "rewriting"
	CallExpansion        AICallType = "expansion"
	CallContinuation     AICallType = "continuation"
)

type AIUsageLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_usage_user_time,priority:1" json:"user_id"`
	ScriptID      *uuid.UUID     `gorm:"type:uuid;index" json:"script_id,omitempty"`
	CallType      AICallType     `gorm:"column:call_type;size:32;not null;index" json:"call_type"`
	Timestamp     time.Time      `gorm:"column:timestamp;not null;index:idx_usage_user_time,priority:2" json:"timestamp"`
	UsageMetadata datatypes.JSON `gorm:"column:usage_metadata" json:"usage_metadata,omitempty"`
}

func (AIUsageLog) TableName() string { return "ai_usage_log" }

func (l *AIUsageLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}
