package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type BeatRepo interface {
	Create(dbc dbctx.Context, rows []*types.Beat) ([]*types.Beat, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Beat, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Beat, error)
	ListByScript(dbc dbctx.Context, scriptID uuid.UUID) ([]*types.Beat, error)
	CountByScript(dbc dbctx.Context, scriptID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type beatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBeatRepo(db *gorm.DB, baseLog *logger.Logger) BeatRepo {
	return &beatRepo{db: db, log: baseLog.With("repo", "BeatRepo")}
}

func (r *beatRepo) Create(dbc dbctx.Context, rows []*types.Beat) ([]*types.Beat, error) {
	if len(rows) == 0 {
		return []*types.Beat{}, nil
	}
	if err := dbc.DB(r.db).Omit("Script", "MasterBeatSheet").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *beatRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Beat, error) {
	var out []*types.Beat
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Scopes(Live).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *beatRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Beat, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *beatRepo) ListByScript(dbc dbctx.Context, scriptID uuid.UUID) ([]*types.Beat, error) {
	var out []*types.Beat
	if err := dbc.DB(r.db).
		Scopes(Live).
		Where("script_id = ?", scriptID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *beatRepo) CountByScript(dbc dbctx.Context, scriptID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Beat{}).Scopes(Live).Where("script_id = ?", scriptID).Count(&n).Error
	return n, err
}

func (r *beatRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Beat{}).Where("id = ?", id).Updates(updates).Error
}
