package screenplay

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type ComponentRepo interface {
	Create(dbc dbctx.Context, rows []*types.SceneSegmentComponent) ([]*types.SceneSegmentComponent, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneSegmentComponent, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegmentComponent, error)
	ListBySegmentIDs(dbc dbctx.Context, segmentIDs []uuid.UUID) ([]*types.SceneSegmentComponent, error)
	MaxPosition(dbc dbctx.Context, segmentID uuid.UUID) (*float64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type componentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewComponentRepo(db *gorm.DB, baseLog *logger.Logger) ComponentRepo {
	return &componentRepo{db: db, log: baseLog.With("repo", "ComponentRepo")}
}

func (r *componentRepo) Create(dbc dbctx.Context, rows []*types.SceneSegmentComponent) ([]*types.SceneSegmentComponent, error) {
	if len(rows) == 0 {
		return []*types.SceneSegmentComponent{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *componentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneSegmentComponent, error) {
	var out []*types.SceneSegmentComponent
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Scopes(Live).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *componentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegmentComponent, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *componentRepo) ListBySegmentIDs(dbc dbctx.Context, segmentIDs []uuid.UUID) ([]*types.SceneSegmentComponent, error) {
	var out []*types.SceneSegmentComponent
	if len(segmentIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Scopes(Live).
		Where("scene_segment_id IN ?", segmentIDs).
		Order("scene_segment_id, position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *componentRepo) MaxPosition(dbc dbctx.Context, segmentID uuid.UUID) (*float64, error) {
	var max sql.NullFloat64
	if err := dbc.DB(r.db).
		Model(&types.SceneSegmentComponent{}).
		Scopes(Live).
		Where("scene_segment_id = ?", segmentID).
		Select("MAX(position)").
		Row().
		Scan(&max); err != nil {
		return nil, err
	}
	if !max.Valid {
		return nil, nil
	}
	return &max.Float64, nil
}

func (r *componentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.SceneSegmentComponent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *componentRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.SceneSegmentComponent{}).
		Scopes(Live).
		Where("id IN ?", ids).
		Updates(domain.SoftDeleteColumns(time.Now().UTC())).Error
}
