package screenplay

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComponentType string

const (
	ComponentHeading    ComponentType = "HEADING"
	ComponentAction     ComponentType = "ACTION"
	ComponentDialogue   ComponentType = "DIALOGUE"
	ComponentCharacter  ComponentType = "CHARACTER"
	ComponentTransition ComponentType = "TRANSITION"

	// ComponentParenthetical is sent by editors that render a parenthetical as its own line. It is never
	// stored; it folds into the parent DIALOGUE row's Parenthetical.
	ComponentParenthetical ComponentType = "PARENTHETICAL"
)

// Stored reports whether t is persisted as a component row.
func (t ComponentType) Stored() bool {
	switch t {
	case ComponentHeading, ComponentAction, ComponentDialogue, ComponentCharacter, ComponentTransition:
		return true
	}
	return false
}

type SceneSegment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ScriptID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_segment_script_number,priority:1" json:"script_id"`
	Script             *Script           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScriptID;references:ID" json:"-"`
	BeatID             *uuid.UUID        `gorm:"type:uuid;index" json:"beat_id,omitempty"`
	Beat               *Beat             `gorm:"constraint:OnDelete:SET NULL;foreignKey:BeatID;references:ID" json:"-"`
	SceneDescriptionID *uuid.UUID        `gorm:"type:uuid;index" json:"scene_description_id,omitempty"`
	SceneDescription   *SceneDescription `gorm:"constraint:OnDelete:SET NULL;foreignKey:SceneDescriptionID;references:ID" json:"-"`
	SegmentNumber      float64           `gorm:"column:segment_number;type:double precision;not null;index:idx_segment_script_number,priority:2" json:"segment_number"`
	SoftDelete
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Components []SceneSegmentComponent `gorm:"foreignKey:SceneSegmentID;references:ID" json:"components,omitempty"`
}

func (SceneSegment) TableName() string { return "scene_segments" }

func (s *SceneSegment) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type SceneSegmentComponent struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SceneSegmentID uuid.UUID     `gorm:"type:uuid;not null;index:idx_component_segment_position,priority:1" json:"scene_segment_id"`
	SceneSegment   *SceneSegment `gorm:"constraint:OnDelete:CASCADE;foreignKey:SceneSegmentID;references:ID" json:"-"`
	ComponentType  ComponentType `gorm:"column:component_type;size:16;not null" json:"component_type"`
	Position       float64       `gorm:"column:position;type:double precision;not null;index:idx_component_segment_position,priority:2" json:"position"`
	Content        string        `gorm:"column:content;type:text;not null" json:"content"`
	CharacterName  *string       `gorm:"column:character_name;size:255" json:"character_name,omitempty"`
	Parenthetical  *string       `gorm:"column:parenthetical;size:255" json:"parenthetical,omitempty"`
	SoftDelete
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SceneSegmentComponent) TableName() string { return "scene_segment_components" }

func (c *SceneSegmentComponent) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
