package screenplay

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type SceneDescriptionRepo interface {
	Create(dbc dbctx.Context, rows []*types.SceneDescription) ([]*types.SceneDescription, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneDescription, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneDescription, error)
	ListByBeat(dbc dbctx.Context, beatID uuid.UUID) ([]*types.SceneDescription, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type sceneDescriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSceneDescriptionRepo(db *gorm.DB, baseLog *logger.Logger) SceneDescriptionRepo {
	return &sceneDescriptionRepo{db: db, log: baseLog.With("repo", "SceneDescriptionRepo")}
}

func (r *sceneDescriptionRepo) Create(dbc dbctx.Context, rows []*types.SceneDescription) ([]*types.SceneDescription, error) {
	if len(rows) == 0 {
		return []*types.SceneDescription{}, nil
	}
	if err := dbc.DB(r.db).Omit("Beat").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sceneDescriptionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneDescription, error) {
	var out []*types.SceneDescription
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Scopes(Live).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneDescriptionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneDescription, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *sceneDescriptionRepo) ListByBeat(dbc dbctx.Context, beatID uuid.UUID) ([]*types.SceneDescription, error) {
	var out []*types.SceneDescription
	if err := dbc.DB(r.db).
		Scopes(Live).
		Where("beat_id = ?", beatID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneDescriptionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.SceneDescription{}).Where("id = ?", id).Updates(updates).Error
}

func (r *sceneDescriptionRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.SceneDescription{}).
		Scopes(Live).
		Where("id IN ?", ids).
		Updates(domain.SoftDeleteColumns(time.Now().UTC())).Error
}
