package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type ScriptListFilter struct {
	Genre string
	Skip  int
	Limit int
}

type ScriptRepo interface {
	Create(dbc dbctx.Context, rows []*types.Script) ([]*types.Script, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Script, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Script, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, filter ScriptListFilter) ([]*types.Script, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// FullDeleteByIDs removes scripts and every row of their hierarchy.
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type scriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScriptRepo(db *gorm.DB, baseLog *logger.Logger) ScriptRepo {
	return &scriptRepo{db: db, log: baseLog.With("repo", "ScriptRepo")}
}

func (r *scriptRepo) Create(dbc dbctx.Context, rows []*types.Script) ([]*types.Script, error) {
	t := dbc.DB(r.db)
	if len(rows) == 0 {
		return []*types.Script{}, nil
	}
	if err := t.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *scriptRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Script, error) {
	t := dbc.DB(r.db)
	var out []*types.Script
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scriptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Script, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *scriptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, filter ScriptListFilter) ([]*types.Script, error) {
	t := dbc.DB(r.db)
	var out []*types.Script
	q := t.Where("user_id = ?", userID)
	if filter.Genre != "" {
		q = q.Where("genre = ?", filter.Genre)
	}
	if err := q.Order("created_at DESC").
		Scopes(Page(filter.Skip, filter.Limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scriptRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.DB(r.db)
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.Model(&types.Script{}).Where("id = ?", id).Updates(updates).Error
}

func (r *scriptRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	run := func(tx *gorm.DB) error {
		var beatIDs, segmentIDs, componentIDs []uuid.UUID
		if err := tx.Model(&types.Beat{}).Where("script_id IN ?", ids).Pluck("id", &beatIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&types.SceneSegment{}).Where("script_id IN ?", ids).Pluck("id", &segmentIDs).Error; err != nil {
			return err
		}
		if len(segmentIDs) > 0 {
			if err := tx.Model(&types.SceneSegmentComponent{}).Where("scene_segment_id IN ?", segmentIDs).Pluck("id", &componentIDs).Error; err != nil {
				return err
			}
		}
		if len(componentIDs) > 0 {
			if err := tx.Where("component_id IN ?", componentIDs).Delete(&types.ComponentAlternative{}).Error; err != nil {
				return err
			}
			if err := tx.Where("component_id IN ?", componentIDs).Delete(&types.ComponentSelectionHistory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", componentIDs).Delete(&types.SceneSegmentComponent{}).Error; err != nil {
				return err
			}
		}
		if len(segmentIDs) > 0 {
			if err := tx.Where("id IN ?", segmentIDs).Delete(&types.SceneSegment{}).Error; err != nil {
				return err
			}
		}
		if len(beatIDs) > 0 {
			if err := tx.Where("beat_id IN ?", beatIDs).Delete(&types.SceneDescription{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", beatIDs).Delete(&types.Beat{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("script_id IN ?", ids).Delete(&types.SceneGenerationTracker{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&types.Script{}).Error
	}
	if dbc.Tx != nil {
		return run(dbc.DB(r.db))
	}
	return r.db.WithContext(dbc.Ctx).Transaction(run)
}
