package screenplay

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransformKind string

const (
	TransformShorten  TransformKind = "shorten"
	TransformRewrite  TransformKind = "rewrite"
	TransformExpand   TransformKind = "expand"
	TransformContinue TransformKind = "continue"
)

func (k TransformKind) Valid() bool {
	switch k {
	case TransformShorten, TransformRewrite, TransformExpand, TransformContinue:
		return true
	}
	return false
}

type AlternativeTheme string

const (
	ThemeConcise  AlternativeTheme = "concise"
	ThemeDramatic AlternativeTheme = "dramatic"
	ThemeMinimal  AlternativeTheme = "minimal"
	ThemePoetic   AlternativeTheme = "poetic"
	ThemeHumorous AlternativeTheme = "humorous"
)

// Themes is the fixed, ordered set of alternatives produced for every transform.
var Themes = []AlternativeTheme{ThemeConcise, ThemeDramatic, ThemeMinimal, ThemePoetic, ThemeHumorous}

func (t AlternativeTheme) Valid() bool {
	for _, th := range Themes {
		if th == t {
			return true
		}
	}
	return false
}

// ComponentAlternative holds one themed transform result. Kind discriminates the shorten / rewrite /
// expand / continue sets; (component, kind, theme) is unique.
type ComponentAlternative struct {
	ID              uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	ComponentID     uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_alternative_component_kind_type,priority:1" json:"component_id"`
	Component       *SceneSegmentComponent `gorm:"constraint:OnDelete:CASCADE;foreignKey:ComponentID;references:ID" json:"-"`
	Kind            TransformKind          `gorm:"column:kind;size:16;not null;uniqueIndex:idx_alternative_component_kind_type,priority:2" json:"kind"`
	AlternativeType AlternativeTheme       `gorm:"column:alternative_type;size:16;not null;uniqueIndex:idx_alternative_component_kind_type,priority:3" json:"alternative_type"`
	Text            string                 `gorm:"column:text;type:text;not null" json:"text"`
	Rationale       string                 `gorm:"column:rationale;type:text" json:"rationale"`
	SoftDelete
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ComponentAlternative) TableName() string { return "component_alternatives" }

func (a *ComponentAlternative) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// ComponentSelectionHistory is append-only.
type ComponentSelectionHistory struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ComponentID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_selection_component_kind,priority:1" json:"component_id"`
	Kind            TransformKind    `gorm:"column:kind;size:16;not null;index:idx_selection_component_kind,priority:2" json:"kind"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	AlternativeID   uuid.UUID        `gorm:"type:uuid;not null" json:"alternative_id"`
	AlternativeType AlternativeTheme `gorm:"column:alternative_type;size:16;not null" json:"alternative_type"`
	SelectedText    string           `gorm:"column:selected_text;type:text;not null" json:"selected_text"`
	SelectedAt      time.Time        `gorm:"column:selected_at;not null;index" json:"selected_at"`
	CreatedAt       time.Time        `gorm:"not null" json:"created_at"`
}

func (ComponentSelectionHistory) TableName() string { return "component_selection_history" }

func (h *ComponentSelectionHistory) BeforeCreate(*gorm.DB) error {
	ensureID(&h.ID)
	if h.SelectedAt.IsZero() {
		h.SelectedAt = time.Now().UTC()
	}
	return nil
}
