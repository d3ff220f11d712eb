package screenplay

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreationMethod string

const (
	CreationFromScratch CreationMethod = "FROM_SCRATCH"
	CreationWithAI      CreationMethod = "WITH_AI"
	CreationUpload      CreationMethod = "UPLOAD"
)

func (m CreationMethod) Valid() bool {
	switch m {
	case CreationFromScratch, CreationWithAI, CreationUpload:
		return true
	}
	return false
}

// TracksProgress reports whether script_progress is derived from the number of live segments.
func (m CreationMethod) TracksProgress() bool {
	return m == CreationFromScratch || m == CreationWithAI
}

type Script struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string         `gorm:"column:title;size:255;not null;index" json:"title"`
	Subtitle       *string        `gorm:"column:subtitle;size:255" json:"subtitle,omitempty"`
	Genre          string         `gorm:"column:genre;size:100;not null" json:"genre"`
	Story          string         `gorm:"column:story;type:text;not null" json:"story"`
	CreationMethod CreationMethod `gorm:"column:creation_method;size:32;not null;default:'FROM_SCRATCH'" json:"creation_method"`
	ScriptProgress int            `gorm:"column:script_progress;not null;default:0" json:"script_progress"`
	IsFileUploaded bool           `gorm:"column:is_file_uploaded;not null;default:false" json:"is_file_uploaded"`
	FileURL        *string        `gorm:"column:file_url;size:512" json:"file_url,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (Script) TableName() string { return "scripts" }

func (s *Script) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// ProgressFor is the completion percentage for a script holding n live segments.
func ProgressFor(liveSegments int64) int {
	p := liveSegments * 5
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}
