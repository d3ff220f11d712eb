package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type AlternativeRepo interface {
	// ReplaceSet deletes every stored alternative for (component, kind) and inserts rows in its place.
	ReplaceSet(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind, rows []*types.ComponentAlternative) ([]*types.ComponentAlternative, error)
	ListByComponent(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) ([]*types.ComponentAlternative, error)
	FindByText(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind, text string) (*types.ComponentAlternative, error)
}

type alternativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlternativeRepo(db *gorm.DB, baseLog *logger.Logger) AlternativeRepo {
	return &alternativeRepo{db: db, log: baseLog.With("repo", "AlternativeRepo")}
}

func (r *alternativeRepo) ReplaceSet(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind, rows []*types.ComponentAlternative) ([]*types.ComponentAlternative, error) {
	t := dbc.DB(r.db)
	if err := t.Where("component_id = ? AND kind = ?", componentID, kind).
		Delete(&types.ComponentAlternative{}).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*types.ComponentAlternative{}, nil
	}
	for _, row := range rows {
		row.ComponentID = componentID
		row.Kind = kind
	}
	if err := t.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *alternativeRepo) ListByComponent(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) ([]*types.ComponentAlternative, error) {
	var out []*types.ComponentAlternative
	if err := dbc.DB(r.db).
		Scopes(Live).
		Where("component_id = ? AND kind = ?", componentID, kind).
		Order("alternative_type ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alternativeRepo) FindByText(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind, text string) (*types.ComponentAlternative, error) {
	var out []*types.ComponentAlternative
	if err := dbc.DB(r.db).
		Scopes(Live).
		Where("component_id = ? AND kind = ? AND text = ?", componentID, kind, text).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
