package screenplay

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BeatSheetType string

const (
	BeatSheetBlakeSnyder    BeatSheetType = "BLAKE_SNYDER"
	BeatSheetHeroJourney    BeatSheetType = "HERO_JOURNEY"
	BeatSheetStoryCircle    BeatSheetType = "STORY_CIRCLE"
	BeatSheetPixarStructure BeatSheetType = "PIXAR_STRUCTURE"
	BeatSheetTV             BeatSheetType = "TV_BEAT_SHEET"
	BeatSheetMiniMovie      BeatSheetType = "MINI_MOVIE"
	BeatSheetIndieFilm      BeatSheetType = "INDIE_FILM"
)

type BeatAct string

const (
	Act1  BeatAct = "act_1"
	Act2A BeatAct = "act_2a"
	Act2B BeatAct = "act_2b"
	Act3  BeatAct = "act_3"
)

func (a BeatAct) Valid() bool {
	switch a {
	case Act1, Act2A, Act2B, Act3:
		return true
	}
	return false
}

const (
	DefaultScenesPerBeat    = 4
	DefaultWordCountMaximum = 800
)

// TemplateBeat is one entry of MasterBeatSheet.Template.
type TemplateBeat struct {
	Position         int     `json:"position" yaml:"position"`
	Name             string  `json:"name" yaml:"name"`
	Description      string  `json:"description" yaml:"description"`
	NumberOfScenes   int     `json:"number_of_scenes" yaml:"number_of_scenes"`
	WordCountMaximum int     `json:"word_count_maximum" yaml:"word_count_maximum"`
	Act              BeatAct `json:"act,omitempty" yaml:"act"`
}

// Scenes returns NumberOfScenes or the default when unset.
func (t TemplateBeat) Scenes() int {
	if t.NumberOfScenes <= 0 {
		return DefaultScenesPerBeat
	}
	return t.NumberOfScenes
}

// WordBudgetPerScene is ceil(word_count_maximum / number_of_scenes).
func (t TemplateBeat) WordBudgetPerScene() int {
	max := t.WordCountMaximum
	if max <= 0 {
		max = DefaultWordCountMaximum
	}
	n := t.Scenes()
	return (max + n - 1) / n
}

type BeatTemplate struct {
	Beats []TemplateBeat `json:"beats" yaml:"beats"`
}

type MasterBeatSheet struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"column:name;size:255;not null" json:"name"`
	BeatSheetType BeatSheetType  `gorm:"column:beat_sheet_type;size:64;not null;uniqueIndex" json:"beat_sheet_type"`
	Description   string         `gorm:"column:description;type:text;not null" json:"description"`
	NumberOfBeats int            `gorm:"column:number_of_beats;not null" json:"number_of_beats"`
	Template      datatypes.JSON `gorm:"column:template;not null" json:"template"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (MasterBeatSheet) TableName() string { return "master_beat_sheets" }

func (m *MasterBeatSheet) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (m *MasterBeatSheet) DecodeTemplate() (BeatTemplate, error) {
	var t BeatTemplate
	if len(m.Template) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(m.Template, &t); err != nil {
		return t, fmt.Errorf("decode template for %s: %w", m.BeatSheetType, err)
	}
	return t, nil
}

// TemplateBeatAt finds the template definition for a 1-based beat position.
func (m *MasterBeatSheet) TemplateBeatAt(position int) (*TemplateBeat, error) {
	t, err := m.DecodeTemplate()
	if err != nil {
		return nil, err
	}
	for i := range t.Beats {
		if t.Beats[i].Position == position {
			return &t.Beats[i], nil
		}
	}
	return nil, nil
}

type Beat struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ScriptID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_beat_script_position,priority:1;uniqueIndex:idx_beat_script_title,priority:1" json:"script_id"`
	Script            *Script          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ScriptID;references:ID" json:"-"`
	MasterBeatSheetID uuid.UUID        `gorm:"type:uuid;not null;index" json:"master_beat_sheet_id"`
	MasterBeatSheet   *MasterBeatSheet `gorm:"foreignKey:MasterBeatSheetID;references:ID" json:"-"`
	Position          int              `gorm:"column:position;not null;uniqueIndex:idx_beat_script_position,priority:2" json:"position"`
	BeatTitle         string           `gorm:"column:beat_title;size:255;not null;uniqueIndex:idx_beat_script_title,priority:2" json:"beat_title"`
	BeatDescription   string           `gorm:"column:beat_description;type:text;not null" json:"beat_description"`
	BeatAct           BeatAct          `gorm:"column:beat_act;size:16;not null" json:"beat_act"`
	CompleteJSON      datatypes.JSON   `gorm:"column:complete_json" json:"complete_json,omitempty"`
	SoftDelete
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Beat) TableName() string { return "beats" }

func (b *Beat) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
