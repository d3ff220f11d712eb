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

type SegmentListFilter struct {
	BeatID             *uuid.UUID
	SceneDescriptionID *uuid.UUID
	Skip               int
	Limit              int
}

type SceneSegmentRepo interface {
	Create(dbc dbctx.Context, rows []*types.SceneSegment) ([]*types.SceneSegment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneSegment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegment, error)
	// GetWithComponents loads a live segment and its live components ordered by position.
	GetWithComponents(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegment, error)
	ListByScript(dbc dbctx.Context, scriptID uuid.UUID, filter SegmentListFilter) ([]*types.SceneSegment, int64, error)
	FirstByScript(dbc dbctx.Context, scriptID uuid.UUID) (*types.SceneSegment, error)
	MaxSegmentNumber(dbc dbctx.Context, scriptID uuid.UUID) (*float64, error)
	CountLiveByScript(dbc dbctx.Context, scriptID uuid.UUID) (int64, error)
	ExistsForSceneDescription(dbc dbctx.Context, sceneDescriptionID uuid.UUID) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// SoftDeleteWithComponents hides segments and every still-live component they own.
	SoftDeleteWithComponents(dbc dbctx.Context, ids []uuid.UUID) error
}

type sceneSegmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSceneSegmentRepo(db *gorm.DB, baseLog *logger.Logger) SceneSegmentRepo {
	return &sceneSegmentRepo{db: db, log: baseLog.With("repo", "SceneSegmentRepo")}
}

func liveComponents(db *gorm.DB) *gorm.DB {
	return db.Scopes(Live).Order("position ASC")
}

func (r *sceneSegmentRepo) Create(dbc dbctx.Context, rows []*types.SceneSegment) ([]*types.SceneSegment, error) {
	if len(rows) == 0 {
		return []*types.SceneSegment{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sceneSegmentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.SceneSegment, error) {
	var out []*types.SceneSegment
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Scopes(Live).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sceneSegmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *sceneSegmentRepo) GetWithComponents(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.SceneSegment
	if err := dbc.DB(r.db).
		Preload("Components", liveComponents).
		Scopes(Live).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sceneSegmentRepo) ListByScript(dbc dbctx.Context, scriptID uuid.UUID, filter SegmentListFilter) ([]*types.SceneSegment, int64, error) {
	t := dbc.DB(r.db)
	base := func() *gorm.DB {
		q := t.Model(&types.SceneSegment{}).Scopes(Live).Where("script_id = ?", scriptID)
		if filter.BeatID != nil {
			q = q.Where("beat_id = ?", *filter.BeatID)
		}
		if filter.SceneDescriptionID != nil {
			q = q.Where("scene_description_id = ?", *filter.SceneDescriptionID)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.SceneSegment
	if err := base().
		Preload("Components", liveComponents).
		Order("segment_number ASC").
		Scopes(Page(filter.Skip, filter.Limit)).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *sceneSegmentRepo) FirstByScript(dbc dbctx.Context, scriptID uuid.UUID) (*types.SceneSegment, error) {
	var out []*types.SceneSegment
	if err := dbc.DB(r.db).
		Preload("Components", liveComponents).
		Scopes(Live).
		Where("script_id = ?", scriptID).
		Order("segment_number ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sceneSegmentRepo) MaxSegmentNumber(dbc dbctx.Context, scriptID uuid.UUID) (*float64, error) {
	var max sql.NullFloat64
	if err := dbc.DB(r.db).
		Model(&types.SceneSegment{}).
		Scopes(Live).
		Where("script_id = ?", scriptID).
		Select("MAX(segment_number)").
		Row().
		Scan(&max); err != nil {
		return nil, err
	}
	if !max.Valid {
		return nil, nil
	}
	return &max.Float64, nil
}

func (r *sceneSegmentRepo) CountLiveByScript(dbc dbctx.Context, scriptID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.SceneSegment{}).Scopes(Live).Where("script_id = ?", scriptID).Count(&n).Error
	return n, err
}

func (r *sceneSegmentRepo) ExistsForSceneDescription(dbc dbctx.Context, sceneDescriptionID uuid.UUID) (bool, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.SceneSegment{}).
		Scopes(Live).
		Where("scene_description_id = ?", sceneDescriptionID).
		Count(&n).Error
	return n > 0, err
}

func (r *sceneSegmentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.SceneSegment{}).Where("id = ?", id).Updates(updates).Error
}

func (r *sceneSegmentRepo) SoftDeleteWithComponents(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	t := dbc.DB(r.db)
	now := time.Now().UTC()
	if err := t.Model(&types.SceneSegmentComponent{}).
		Scopes(Live).
		Where("scene_segment_id IN ?", ids).
		Updates(domain.SoftDeleteColumns(now)).Error; err != nil {
		return err
	}
	return t.Model(&types.SceneSegment{}).
		Scopes(Live).
		Where("id IN ?", ids).
		Updates(domain.SoftDeleteColumns(now)).Error
}
