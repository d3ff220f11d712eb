package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// SelectionHistoryRepo is append-only; there is no update or delete.
type SelectionHistoryRepo interface {
	Create(dbc dbctx.Context, row *types.ComponentSelectionHistory) error
	Latest(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) (*types.ComponentSelectionHistory, error)
	ListByComponent(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) ([]*types.ComponentSelectionHistory, error)
}

type selectionHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSelectionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) SelectionHistoryRepo {
	return &selectionHistoryRepo{db: db, log: baseLog.With("repo", "SelectionHistoryRepo")}
}

func (r *selectionHistoryRepo) Create(dbc dbctx.Context, row *types.ComponentSelectionHistory) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *selectionHistoryRepo) Latest(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) (*types.ComponentSelectionHistory, error) {
	var out []*types.ComponentSelectionHistory
	if err := dbc.DB(r.db).
		Where("component_id = ? AND kind = ?", componentID, kind).
		Order("selected_at DESC").
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *selectionHistoryRepo) ListByComponent(dbc dbctx.Context, componentID uuid.UUID, kind domain.TransformKind) ([]*types.ComponentSelectionHistory, error) {
	var out []*types.ComponentSelectionHistory
	if err := dbc.DB(r.db).
		Where("component_id = ? AND kind = ?", componentID, kind).
		Order("selected_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
