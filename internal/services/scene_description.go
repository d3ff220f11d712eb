package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/prompts"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const (
	SourceExisting  = "existing"
	SourceGenerated = "generated"
)

type SceneDescriptionsResult struct {
	BeatID            uuid.UUID                 `json:"beat_id"`
	SceneDescriptions []*types.SceneDescription `json:"scene_descriptions"`
	Source            string                    `json:"source"`
}

// SceneDescriptionPatch edits a description through its two fields. SceneDetailForUI is the legacy
// combined "{heading} : {description}" form and is only read when both fields are absent.
type SceneDescriptionPatch struct {
	SceneHeading     *string `json:"scene_heading,omitempty"`
	SceneDescription *string `json:"scene_description,omitempty"`
	SceneDetailForUI *string `json:"scene_detail_for_ui,omitempty"`
}

type SceneDescriptionService interface {
	GenerateForBeat(ctx context.Context, beatID uuid.UUID) (*SceneDescriptionsResult, error)
	ListForBeat(ctx context.Context, beatID uuid.UUID) ([]*types.SceneDescription, error)
	Update(ctx context.Context, id uuid.UUID, patch SceneDescriptionPatch) (*types.SceneDescription, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// EnsureForBeat returns the beat's live descriptions, generating them first when there are none. The
	// bool reports whether this call created them. Callers have already checked ownership.
	EnsureForBeat(ctx context.Context, script *types.Script, beat *types.Beat) ([]*types.SceneDescription, bool, error)
}

type generatedScenes struct {
	Scenes []struct {
		SceneHeading     string `json:"scene_heading"`
		SceneDescription string `json:"scene_description"`
	} `json:"scenes"`
}

type sceneDescriptionService struct {
	db           *gorm.DB
	log          *logger.Logger
	ai           llm.Client
	usage        UsageService
	resolver     NextTargetResolver
	masters      repos.MasterBeatSheetRepo
	descriptions repos.SceneDescriptionRepo
	trackers     repos.TrackerRepo
	own          ownership
}

func NewSceneDescriptionService(db *gorm.DB, log *logger.Logger, ai llm.Client, usage UsageService, resolver NextTargetResolver, r repos.Set) SceneDescriptionService {
	return &sceneDescriptionService{
		db:           db,
		log:          log.With("service", "SceneDescriptionService"),
		ai:           ai,
		usage:        usage,
		resolver:     resolver,
		masters:      r.MasterBeatSheet,
		descriptions: r.SceneDescription,
		trackers:     r.Tracker,
		own:          newOwnership(r),
	}
}

func (s *sceneDescriptionService) GenerateForBeat(ctx context.Context, beatID uuid.UUID) (*SceneDescriptionsResult, error) {
	beat, script, err := s.own.beat(dbctx.Context{Ctx: ctx}, beatID)
	if err != nil {
		return nil, err
	}
	rows, created, err := s.EnsureForBeat(ctx, script, beat)
	if err != nil {
		var ce *capabilityError
		if errors.As(err, &ce) {
			return nil, apierr.BadGateway("generation_failed", ce.err)
		}
		return nil, err
	}
	source := SourceExisting
	if created {
		source = SourceGenerated
	}
	return &SceneDescriptionsResult{BeatID: beat.ID, SceneDescriptions: rows, Source: source}, nil
}

func (s *sceneDescriptionService) EnsureForBeat(ctx context.Context, script *types.Script, beat *types.Beat) ([]*types.SceneDescription, bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.descriptions.ListByBeat(dbc, beat.ID)
	if err != nil {
		return nil, false, fmt.Errorf("list scene descriptions: %w", err)
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	m, err := s.masters.GetByID(dbc, beat.MasterBeatSheetID)
	if err != nil {
		return nil, false, fmt.Errorf("load master beat sheet: %w", err)
	}
	if m == nil {
		return nil, false, errMasterNotFound
	}
	tb, err := m.TemplateBeatAt(beat.Position)
	if err != nil {
		return nil, false, fmt.Errorf("decode beat template: %w", err)
	}
	if tb == nil {
		return nil, false, errTemplateNotFound
	}
	previous, err := s.resolver.PreviousSceneHeadings(dbc, script.ID, beat.Position, 0)
	if err != nil {
		return nil, false, err
	}
	n := tb.Scenes()
	p, err := prompts.Build(prompts.PromptSceneDescriptions, prompts.Input{
		ScriptTitle:             script.Title,
		Genre:                   script.Genre,
		Story:                   script.Story,
		BeatTitle:               beat.BeatTitle,
		BeatDescription:         beat.BeatDescription,
		BeatPosition:            beat.Position,
		TemplateBeatName:        tb.Name,
		TemplateBeatDescription: tb.Description,
		NumberOfScenes:          n,
		PreviousHeadings:        bulletList(previous),
	})
	if err != nil {
		return nil, false, err
	}

	tracker := s.startTracker(dbc, script.ID, beat)
	obj, err := s.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	var out generatedScenes
	if err == nil {
		err = llm.Decode(obj, &out)
	}
	if err == nil && len(out.Scenes) == 0 {
		err = errors.New("no scenes returned")
	}
	if err != nil {
		s.finishTracker(dbc, tracker, err)
		s.log.Error("Scene description generation failed", "beat_id", beat.ID, "error", err)
		return nil, false, &capabilityError{fmt.Errorf("scene description generation failed: %w", err)}
	}
	if len(out.Scenes) > n {
		out.Scenes = out.Scenes[:n]
	}

	var rows []*types.SceneDescription
	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		again, err := s.descriptions.ListByBeat(inner, beat.ID)
		if err != nil {
			return err
		}
		if len(again) > 0 {
			rows = again
			return nil
		}
		fresh := make([]*types.SceneDescription, 0, len(out.Scenes))
		for i, sc := range out.Scenes {
			fresh = append(fresh, &types.SceneDescription{
				BeatID:           beat.ID,
				Position:         i + 1,
				SceneHeading:     strings.TrimSpace(sc.SceneHeading),
				SceneDescription: strings.TrimSpace(sc.SceneDescription),
			})
		}
		if rows, err = s.descriptions.Create(inner, fresh); err != nil {
			return err
		}
		created = true
		return nil
	})
	s.finishTracker(dbc, tracker, err)
	if err != nil {
		s.log.Error("Persist scene descriptions failed", "beat_id", beat.ID, "error", err)
		return nil, false, fmt.Errorf("persist scene descriptions: %w", err)
	}
	if created {
		for _, r := range rows {
			r.RefreshDetail()
		}
		_ = s.usage.LogCall(dbc, script.UserID, billing.CallSceneDescription, &script.ID,
			usageMetadata(s.ai.Model(), p.User, jsonText(obj), map[string]any{"beat_id": beat.ID.String(), "scenes": len(rows)}))
	}
	return rows, created, nil
}

func (s *sceneDescriptionService) startTracker(dbc dbctx.Context, scriptID uuid.UUID, beat *types.Beat) *types.SceneGenerationTracker {
	now := time.Now().UTC()
	act := beat.BeatAct
	t := &types.SceneGenerationTracker{
		ScriptID:     scriptID,
		BeatID:       &beat.ID,
		Act:          &act,
		Scope:        domain.TrackerScopeBeat,
		Status:       domain.GenerationInProgress,
		AttemptCount: 1,
		StartedAt:    &now,
	}
	if err := s.trackers.Create(dbc, t); err != nil {
		s.log.Warn("Failed to record generation tracker", "beat_id", beat.ID, "error", err)
		return nil
	}
	return t
}

func (s *sceneDescriptionService) finishTracker(dbc dbctx.Context, t *types.SceneGenerationTracker, cause error) {
	if t == nil {
		return
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{"completed_at": now, "status": domain.GenerationCompleted}
	if cause != nil {
		updates["status"] = domain.GenerationFailed
		updates["error_message"] = cause.Error()
	}
	if err := s.trackers.UpdateFields(dbc, t.ID, updates); err != nil {
		s.log.Warn("Failed to update generation tracker", "tracker_id", t.ID, "error", err)
	}
}

func (s *sceneDescriptionService) ListForBeat(ctx context.Context, beatID uuid.UUID) ([]*types.SceneDescription, error) {
	dbc := dbctx.Context{Ctx: ctx}
	beat, _, err := s.own.beat(dbc, beatID)
	if err != nil {
		return nil, err
	}
	rows, err := s.descriptions.ListByBeat(dbc, beat.ID)
	if err != nil {
		return nil, fmt.Errorf("list scene descriptions: %w", err)
	}
	return rows, nil
}

func (s *sceneDescriptionService) Update(ctx context.Context, id uuid.UUID, patch SceneDescriptionPatch) (*types.SceneDescription, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sd, _, _, err := s.own.sceneDescription(dbc, id)
	if err != nil {
		return nil, err
	}
	heading, description := patch.SceneHeading, patch.SceneDescription
	if heading == nil && description == nil && patch.SceneDetailForUI != nil {
		h, d, err := domain.ParseSceneDetail(*patch.SceneDetailForUI)
		if err != nil {
			return nil, apierr.BadRequest("invalid_scene_detail", err.Error())
		}
		heading, description = &h, &d
	}
	updates := map[string]interface{}{}
	if heading != nil {
		h := strings.TrimSpace(*heading)
		if h == "" {
			return nil, apierr.BadRequest("invalid_scene_detail", "scene_heading cannot be empty")
		}
		if h != sd.SceneHeading {
			updates["scene_heading"] = h
		}
	}
	if description != nil {
		if d := strings.TrimSpace(*description); d != sd.SceneDescription {
			updates["scene_description"] = d
		}
	}
	if len(updates) == 0 {
		return sd, nil
	}
	if err := s.descriptions.UpdateFields(dbc, sd.ID, updates); err != nil {
		return nil, fmt.Errorf("update scene description: %w", err)
	}
	return s.descriptions.GetByID(dbc, sd.ID)
}

func (s *sceneDescriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	sd, _, _, err := s.own.sceneDescription(dbc, id)
	if err != nil {
		return err
	}
	if err := s.descriptions.SoftDeleteByIDs(dbc, []uuid.UUID{sd.ID}); err != nil {
		return fmt.Errorf("delete scene description: %w", err)
	}
	return nil
}

func jsonText(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
