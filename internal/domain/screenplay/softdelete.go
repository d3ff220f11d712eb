package screenplay

import (
	"time"

	"github.com/google/uuid"
)

// SoftDelete is embedded by every entity that is hidden rather than removed. Both columns are always
// written together through MarkDeleted.
type SoftDelete struct {
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (s *SoftDelete) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &now
}

func (s SoftDelete) Deleted() bool { return s.IsDeleted }

// SoftDeleteColumns is the update map used for set-based soft deletes.
func SoftDeleteColumns(now time.Time) map[string]interface{} {
	return map[string]interface{}{"is_deleted": true, "deleted_at": now, "updated_at": now}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
