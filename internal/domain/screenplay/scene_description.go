package screenplay

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidSceneDetail = errors.New("invalid scene detail format")

const sceneDetailSeparator = " : "

// FormatSceneDetail renders the combined "{heading} : {description}" display string.
func FormatSceneDetail(heading, description string) string {
	return heading + sceneDetailSeparator + description
}

// ParseSceneDetail splits a combined display string on its first colon. Any further colons stay in the
// description.
func ParseSceneDetail(s string) (heading, description string, err error) {
	h, d, ok := strings.Cut(s, ":")
	if !ok {
		return "", "", ErrInvalidSceneDetail
	}
	h, d = strings.TrimSpace(h), strings.TrimSpace(d)
	if h == "" {
		return "", "", ErrInvalidSceneDetail
	}
	return h, d, nil
}

type SceneDescription struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BeatID           uuid.UUID `gorm:"type:uuid;not null;index:idx_scene_description_beat_position,priority:1" json:"beat_id"`
	Beat             *Beat     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BeatID;references:ID" json:"-"`
	Position         int       `gorm:"column:position;not null;index:idx_scene_description_beat_position,priority:2" json:"position"`
	SceneHeading     string    `gorm:"column:scene_heading;size:255;not null" json:"scene_heading"`
	SceneDescription string    `gorm:"column:scene_description;type:text;not null" json:"scene_description"`
	SceneDetailForUI string    `gorm:"-" json:"scene_detail_for_ui"`
	SoftDelete
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SceneDescription) TableName() string { return "scene_description_beats" }

func (s *SceneDescription) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *SceneDescription) AfterFind(*gorm.DB) error {
	s.RefreshDetail()
	return nil
}

func (s *SceneDescription) AfterSave(*gorm.DB) error {
	s.RefreshDetail()
	return nil
}

func (s *SceneDescription) RefreshDetail() {
	s.SceneDetailForUI = FormatSceneDetail(s.SceneHeading, s.SceneDescription)
}
