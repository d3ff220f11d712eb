package screenplay

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// TargetRepo holds the ordered anti-join scans that decide what to generate next. Every scan orders by
// (beat position, item position) and ignores soft-deleted rows at every level.
type TargetRepo interface {
	FirstBeatWithoutSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (*types.Beat, error)
	CountSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (int64, error)
	FirstSceneDescriptionWithoutSegment(dbc dbctx.Context, scriptID uuid.UUID) (*types.SceneDescription, error)
	// HeadingsBefore lists scene headings that precede (beatPosition, scenePosition).
	HeadingsBefore(dbc dbctx.Context, scriptID uuid.UUID, beatPosition, scenePosition int) ([]string, error)
}

type targetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTargetRepo(db *gorm.DB, baseLog *logger.Logger) TargetRepo {
	return &targetRepo{db: db, log: baseLog.With("repo", "TargetRepo")}
}

const (
	beatsTable        = "beats"
	descriptionsTable = "scene_description_beats"
)

func (r *targetRepo) FirstBeatWithoutSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (*types.Beat, error) {
	var out []*types.Beat
	if err := dbc.DB(r.db).
		Scopes(LiveIn(beatsTable)).
		Where("beats.script_id = ?", scriptID).
		Where(`NOT EXISTS (
			SELECT 1 FROM scene_description_beats sd
			WHERE sd.beat_id = beats.id AND sd.is_deleted = ?
		)`, false).
		Order("beats.position ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *targetRepo) descriptionsOfScript(t *gorm.DB, scriptID uuid.UUID) *gorm.DB {
	return t.Model(&types.SceneDescription{}).
		Joins("JOIN beats ON beats.id = scene_description_beats.beat_id").
		Scopes(LiveIn(beatsTable), LiveIn(descriptionsTable)).
		Where("beats.script_id = ?", scriptID)
}

func (r *targetRepo) CountSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (int64, error) {
	var n int64
	err := r.descriptionsOfScript(dbc.DB(r.db), scriptID).Count(&n).Error
	return n, err
}

func (r *targetRepo) FirstSceneDescriptionWithoutSegment(dbc dbctx.Context, scriptID uuid.UUID) (*types.SceneDescription, error) {
	var out []*types.SceneDescription
	if err := r.descriptionsOfScript(dbc.DB(r.db), scriptID).
		Select("scene_description_beats.*").
		Where(`NOT EXISTS (
			SELECT 1 FROM scene_segments ss
			WHERE ss.scene_description_id = scene_description_beats.id AND ss.is_deleted = ?
		)`, false).
		Order("beats.position ASC").
		Order("scene_description_beats.position ASC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *targetRepo) HeadingsBefore(dbc dbctx.Context, scriptID uuid.UUID, beatPosition, scenePosition int) ([]string, error) {
	var headings []string
	if err := r.descriptionsOfScript(dbc.DB(r.db), scriptID).
		Where("(beats.position < ? OR (beats.position = ? AND scene_description_beats.position < ?))",
			beatPosition, beatPosition, scenePosition).
		Order("beats.position ASC").
		Order("scene_description_beats.position ASC").
		Pluck("scene_description_beats.scene_heading", &headings).Error; err != nil {
		return nil, err
	}
	return headings, nil
}
