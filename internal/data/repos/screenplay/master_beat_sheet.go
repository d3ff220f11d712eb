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

type MasterBeatSheetRepo interface {
	List(dbc dbctx.Context) ([]*types.MasterBeatSheet, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MasterBeatSheet, error)
	GetByType(dbc dbctx.Context, sheetType domain.BeatSheetType) (*types.MasterBeatSheet, error)
	// Upsert inserts or refreshes templates keyed by beat_sheet_type.
	Upsert(dbc dbctx.Context, rows []*types.MasterBeatSheet) error
}

type masterBeatSheetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMasterBeatSheetRepo(db *gorm.DB, baseLog *logger.Logger) MasterBeatSheetRepo {
	return &masterBeatSheetRepo{db: db, log: baseLog.With("repo", "MasterBeatSheetRepo")}
}

func (r *masterBeatSheetRepo) List(dbc dbctx.Context) ([]*types.MasterBeatSheet, error) {
	var out []*types.MasterBeatSheet
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *masterBeatSheetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MasterBeatSheet, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.MasterBeatSheet
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *masterBeatSheetRepo) GetByType(dbc dbctx.Context, sheetType domain.BeatSheetType) (*types.MasterBeatSheet, error) {
	var out []*types.MasterBeatSheet
	if err := dbc.DB(r.db).Where("beat_sheet_type = ?", sheetType).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *masterBeatSheetRepo) Upsert(dbc dbctx.Context, rows []*types.MasterBeatSheet) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "beat_sheet_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "number_of_beats", "template", "updated_at"}),
	}).Create(&rows).Error
}
