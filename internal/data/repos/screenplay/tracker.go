package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type TrackerRepo interface {
	Create(dbc dbctx.Context, row *types.SceneGenerationTracker) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListByScript(dbc dbctx.Context, scriptID uuid.UUID) ([]*types.SceneGenerationTracker, error)
}

type trackerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrackerRepo(db *gorm.DB, baseLog *logger.Logger) TrackerRepo {
	return &trackerRepo{db: db, log: baseLog.With("repo", "TrackerRepo")}
}

func (r *trackerRepo) Create(dbc dbctx.Context, row *types.SceneGenerationTracker) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *trackerRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.SceneGenerationTracker{}).Where("id = ?", id).Updates(updates).Error
}

func (r *trackerRepo) ListByScript(dbc dbctx.Context, scriptID uuid.UUID) ([]*types.SceneGenerationTracker, error) {
	var out []*types.SceneGenerationTracker
	if err := dbc.DB(r.db).Where("script_id = ?", scriptID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
