package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/fountain"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/position"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/prompts"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const (
	MsgGenerated          = "Successfully generated scene segment"
	MsgGenerationFailed   = "Failed to generate scene segment"
	MsgDescriptionsFailed = "Failed to generate scene descriptions"
	MsgFoundExisting      = "Found existing first scene segment"
	MsgNeedDescriptions   = "Generate scene descriptions first"
	MsgNothingLeft        = "Nothing left to generate"
	MsgAlreadyHasSegment  = "Scene description already has a segment"

	ErrNoDescriptions = "No scene descriptions found"
	ErrAllGenerated   = "All scenes have segments"

	DefaultGenerationLockTTL = 3 * time.Minute
)

type GeneratedComponent struct {
	ComponentID   uuid.UUID            `json:"component_id"`
	ComponentType domain.ComponentType `json:"component_type"`
	Position      float64              `json:"position"`
	Content       string               `json:"content"`
	CharacterName *string              `json:"character_name,omitempty"`
	Parenthetical *string              `json:"parenthetical,omitempty"`
}

type GeneratedSegment struct {
	Components []GeneratedComponent `json:"components"`
}

// InputContext is what the generation capability was given, echoed back to the caller.
type InputContext struct {
	ScriptID                uuid.UUID  `json:"script_id"`
	ScriptTitle             string     `json:"script_title"`
	Genre                   string     `json:"genre"`
	BeatID                  *uuid.UUID `json:"beat_id,omitempty"`
	BeatTitle               string     `json:"beat_title,omitempty"`
	BeatPosition            int        `json:"beat_position,omitempty"`
	TemplateBeatName        string     `json:"template_beat_name,omitempty"`
	TemplateBeatDescription string     `json:"template_beat_description,omitempty"`
	SceneDescriptionID      *uuid.UUID `json:"scene_description_id,omitempty"`
	SceneTitle              string     `json:"scene_title,omitempty"`
	SceneDescription        string     `json:"scene_description,omitempty"`
	ScenePosition           int        `json:"scene_position,omitempty"`
	MinWordCount            int        `json:"min_word_count,omitempty"`
	PreviousScenes          []string   `json:"previous_scenes,omitempty"`
	Source                  string     `json:"source,omitempty"`
}

type GenerationResult struct {
	Success          bool                  `json:"success"`
	InputContext     *InputContext         `json:"input_context,omitempty"`
	GeneratedSegment *GeneratedSegment     `json:"generated_segment,omitempty"`
	FountainText     string                `json:"fountain_text,omitempty"`
	SceneSegmentID   *uuid.UUID            `json:"scene_segment_id,omitempty"`
	CreationMethod   domain.CreationMethod `json:"creation_method"`
	Message          string                `json:"message"`
	Error            string                `json:"error,omitempty"`
	Source           string                `json:"source,omitempty"`
}

// capabilityError marks a failure of the generation capability itself rather than of storage.
type capabilityError struct{ err error }

func (e *capabilityError) Error() string { return e.err.Error() }
func (e *capabilityError) Unwrap() error { return e.err }

// structured reports whether err becomes a {success:false} result instead of an HTTP error.
func structured(err error) bool {
	var ce *capabilityError
	if errors.As(err, &ce) {
		return true
	}
	if ae, ok := apierr.As(err); ok && ae.Status < 500 {
		return true
	}
	return false
}

type GenerationService interface {
	GenerateNext(ctx context.Context, scriptID uuid.UUID) (*GenerationResult, error)
	GetOrGenerateFirst(ctx context.Context, scriptID uuid.UUID) (*GenerationResult, error)
}

type generationService struct {
	db           *gorm.DB
	log          *logger.Logger
	ai           llm.Client
	usage        UsageService
	resolver     NextTargetResolver
	descriptions SceneDescriptionService
	locker       keylock.Locker
	lockTTL      time.Duration
	flight       singleflight.Group

	scripts    repos.ScriptRepo
	masters    repos.MasterBeatSheetRepo
	beats      repos.BeatRepo
	segments   repos.SceneSegmentRepo
	components repos.ComponentRepo
	own        ownership
}

func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	ai llm.Client,
	usage UsageService,
	resolver NextTargetResolver,
	descriptions SceneDescriptionService,
	locker keylock.Locker,
	lockTTL time.Duration,
	r repos.Set,
) GenerationService {
	if locker == nil {
		locker = keylock.NewLocal()
	}
	if lockTTL <= 0 {
		lockTTL = DefaultGenerationLockTTL
	}
	return &generationService{
		db:           db,
		log:          log.With("service", "GenerationService"),
		ai:           ai,
		usage:        usage,
		resolver:     resolver,
		descriptions: descriptions,
		locker:       locker,
		lockTTL:      lockTTL,
		scripts:      r.Script,
		masters:      r.MasterBeatSheet,
		beats:        r.Beat,
		segments:     r.SceneSegment,
		components:   r.Component,
		own:          newOwnership(r),
	}
}

func (s *generationService) aiScript(ctx context.Context, scriptID uuid.UUID) (*types.Script, error) {
	script, err := s.own.script(dbctx.Context{Ctx: ctx}, scriptID)
	if err != nil {
		return nil, err
	}
	if script.CreationMethod != domain.CreationWithAI {
		return nil, errNotAIScript
	}
	return script, nil
}

func (s *generationService) GenerateNext(ctx context.Context, scriptID uuid.UUID) (*GenerationResult, error) {
	script, err := s.aiScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	return s.lockedGenerate(ctx, script, false)
}

func (s *generationService) GetOrGenerateFirst(ctx context.Context, scriptID uuid.UUID) (*GenerationResult, error) {
	script, err := s.aiScript(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	v, err, _ := s.flight.Do(script.ID.String(), func() (interface{}, error) {
		if res, err := s.existingFirst(ctx, script); res != nil || err != nil {
			return res, err
		}
		return s.lockedGenerate(ctx, script, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*GenerationResult), nil
}

// existingFirst returns the result for the script's first live segment, or nil when there is none.
func (s *generationService) existingFirst(ctx context.Context, script *types.Script) (*GenerationResult, error) {
	first, err := s.segments.FirstByScript(dbctx.Context{Ctx: ctx}, script.ID)
	if err != nil {
		return nil, fmt.Errorf("load first segment: %w", err)
	}
	if first == nil {
		return nil, nil
	}
	return s.existingResult(script, first), nil
}

func (s *generationService) existingResult(script *types.Script, seg *types.SceneSegment) *GenerationResult {
	rows := make([]*types.SceneSegmentComponent, 0, len(seg.Components))
	for i := range seg.Components {
		rows = append(rows, &seg.Components[i])
	}
	id := seg.ID
	return &GenerationResult{
		Success: true,
		InputContext: &InputContext{
			ScriptID:           script.ID,
			ScriptTitle:        script.Title,
			Genre:              script.Genre,
			BeatID:             seg.BeatID,
			SceneDescriptionID: seg.SceneDescriptionID,
			Source:             SourceExisting,
		},
		GeneratedSegment: toGeneratedSegment(rows),
		FountainText:     fountain.Render(rows),
		SceneSegmentID:   &id,
		CreationMethod:   script.CreationMethod,
		Message:          MsgFoundExisting,
		Source:           SourceExisting,
	}
}

// lockedGenerate runs one generation step under the per-script lock. With firstOnly set, a segment
// committed by another caller before the lock was taken is returned instead of generating a second one.
func (s *generationService) lockedGenerate(ctx context.Context, script *types.Script, firstOnly bool) (*GenerationResult, error) {
	unlock, ok, err := s.locker.TryLock(ctx, "generate:"+script.ID.String(), s.lockTTL)
	if err != nil {
		s.log.Error("Generation lock unavailable", "script_id", script.ID, "error", err)
		return nil, apierr.Internal("lock_unavailable", fmt.Errorf("acquire generation lock: %w", err))
	}
	if !ok {
		observability.Current().ObserveGeneration("generate_next", "in_progress", 0)
		return nil, errGenerationInFlight
	}
	defer unlock()
	if firstOnly {
		if res, err := s.existingFirst(ctx, script); res != nil || err != nil {
			return res, err
		}
	}
	start := time.Now()
	res, err := s.generateNext(ctx, script)
	observability.Current().ObserveGeneration("generate_next", generationOutcome(res, err), time.Since(start))
	return res, err
}

func generationOutcome(res *GenerationResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case res == nil:
		return "unknown"
	case res.Success:
		return "success"
	case res.Error == ErrNoDescriptions:
		return "no_descriptions"
	case res.Error == ErrAllGenerated:
		return "all_generated"
	default:
		return "failed"
	}
}

func (s *generationService) failed(script *types.Script, msg string, err error) *GenerationResult {
	return &GenerationResult{Success: false, CreationMethod: script.CreationMethod, Message: msg, Error: err.Error()}
}

func (s *generationService) generateNext(ctx context.Context, script *types.Script) (*GenerationResult, error) {
	dbc := dbctx.Context{Ctx: ctx}

	// one beat's worth of descriptions per call
	beat, err := s.resolver.NextBeatWithoutSceneDescriptions(dbc, script.ID)
	if err != nil {
		return nil, err
	}
	if beat != nil {
		if _, _, err := s.descriptions.EnsureForBeat(ctx, script, beat); err != nil {
			if structured(err) {
				s.log.Warn("Scene description step failed", "script_id", script.ID, "beat_id", beat.ID, "error", err)
				return s.failed(script, MsgDescriptionsFailed, err), nil
			}
			return nil, err
		}
	}

	res, err := s.resolver.NextSceneDescriptionWithoutSegment(dbc, script.ID)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case NoDescriptions:
		return &GenerationResult{CreationMethod: script.CreationMethod, Message: MsgNeedDescriptions, Error: ErrNoDescriptions}, nil
	case AllGenerated:
		return &GenerationResult{CreationMethod: script.CreationMethod, Message: MsgNothingLeft, Error: ErrAllGenerated}, nil
	}
	target := res.Target

	input, err := s.gatherContext(dbc, script, target)
	if err != nil {
		if structured(err) {
			return s.failed(script, MsgGenerationFailed, err), nil
		}
		return nil, err
	}

	p, err := prompts.Build(prompts.PromptSceneSegment, prompts.Input{
		ScriptTitle:             script.Title,
		Genre:                   script.Genre,
		Story:                   script.Story,
		BeatTitle:               input.BeatTitle,
		BeatDescription:         input.beatDescription,
		BeatPosition:            input.BeatPosition,
		TemplateBeatName:        input.TemplateBeatName,
		TemplateBeatDescription: input.TemplateBeatDescription,
		SceneHeading:            input.SceneTitle,
		SceneDescription:        input.SceneDescription,
		MinWordCount:            input.MinWordCount,
		PreviousHeadings:        bulletList(input.PreviousScenes),
	})
	if err != nil {
		return s.failed(script, MsgGenerationFailed, err), nil
	}
	obj, err := s.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		s.log.Warn("Scene segment generation failed", "script_id", script.ID, "scene_description_id", target.ID, "error", err)
		return s.failed(script, MsgGenerationFailed, err), nil
	}
	inputs, err := decodeSegmentComponents(obj)
	if err != nil {
		s.log.Warn("Scene segment output rejected", "script_id", script.ID, "error", err)
		return s.failed(script, MsgGenerationFailed, err), nil
	}

	var (
		seg       *types.SceneSegment
		rows      []*types.SceneSegmentComponent
		lostRace  bool
		sceneID   = target.ID
		beatIDRef = target.BeatID
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		taken, err := s.segments.ExistsForSceneDescription(inner, sceneID)
		if err != nil {
			return err
		}
		if taken {
			lostRace = true
			return nil
		}
		top, err := s.segments.MaxSegmentNumber(inner, script.ID)
		if err != nil {
			return err
		}
		created, err := s.segments.Create(inner, []*types.SceneSegment{{
			ScriptID:           script.ID,
			BeatID:             &beatIDRef,
			SceneDescriptionID: &sceneID,
			SegmentNumber:      position.After(top),
		}})
		if err != nil {
			return err
		}
		seg = created[0]
		positions := position.Sequence(len(inputs))
		fresh := make([]*types.SceneSegmentComponent, 0, len(inputs))
		for i, in := range inputs {
			in.Position = positions[i]
			fresh = append(fresh, in.Row(seg.ID))
		}
		if rows, err = s.components.Create(inner, fresh); err != nil {
			return err
		}
		return refreshProgress(inner, s.segments, s.scripts, script)
	})
	if err != nil {
		s.log.Error("Persist generated segment failed", "script_id", script.ID, "error", err)
		return nil, fmt.Errorf("persist generated segment: %w", err)
	}
	if lostRace {
		return &GenerationResult{CreationMethod: script.CreationMethod, Message: MsgAlreadyHasSegment, Error: MsgAlreadyHasSegment, InputContext: &input.InputContext}, nil
	}

	text := fountain.Render(rows)
	_ = s.usage.LogCall(dbc, script.UserID, billing.CallSceneSegment, &script.ID,
		usageMetadata(s.ai.Model(), p.User, text, map[string]any{"scene_description_id": sceneID.String(), "components": len(rows)}))

	s.log.Info("Generated scene segment", "script_id", script.ID, "segment_id", seg.ID, "components", len(rows))
	id := seg.ID
	input.Source = SourceGenerated
	return &GenerationResult{
		Success:          true,
		InputContext:     &input.InputContext,
		GeneratedSegment: toGeneratedSegment(rows),
		FountainText:     text,
		SceneSegmentID:   &id,
		CreationMethod:   script.CreationMethod,
		Message:          MsgGenerated,
		Source:           SourceGenerated,
	}, nil
}

type segmentContext struct {
	InputContext
	beatDescription string
}

// gatherContext loads the beat first, then its template and the earlier headings concurrently. dbc must
// not carry a transaction.
func (s *generationService) gatherContext(dbc dbctx.Context, script *types.Script, sd *types.SceneDescription) (*segmentContext, error) {
	beat, err := s.beats.GetByID(dbc, sd.BeatID)
	if err != nil {
		return nil, fmt.Errorf("load beat: %w", err)
	}
	if beat == nil {
		return nil, errBeatNotFound
	}

	var (
		tb       *domain.TemplateBeat
		previous []string
	)
	g, gctx := errgroup.WithContext(dbc.Ctx)
	inner := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		m, err := s.masters.GetByID(inner, beat.MasterBeatSheetID)
		if err != nil {
			return fmt.Errorf("load master beat sheet: %w", err)
		}
		if m == nil {
			return errMasterNotFound
		}
		if tb, err = m.TemplateBeatAt(beat.Position); err != nil {
			return fmt.Errorf("decode beat template: %w", err)
		}
		if tb == nil {
			return errTemplateNotFound
		}
		return nil
	})
	g.Go(func() error {
		var err error
		previous, err = s.resolver.PreviousSceneHeadings(inner, script.ID, beat.Position, sd.Position)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	beatID, sceneID := beat.ID, sd.ID
	return &segmentContext{
		InputContext: InputContext{
			ScriptID:                script.ID,
			ScriptTitle:             script.Title,
			Genre:                   script.Genre,
			BeatID:                  &beatID,
			BeatTitle:               beat.BeatTitle,
			BeatPosition:            beat.Position,
			TemplateBeatName:        tb.Name,
			TemplateBeatDescription: tb.Description,
			SceneDescriptionID:      &sceneID,
			SceneTitle:              sd.SceneHeading,
			SceneDescription:        sd.SceneDescription,
			ScenePosition:           sd.Position,
			MinWordCount:            tb.WordBudgetPerScene(),
			PreviousScenes:          previous,
		},
		beatDescription: beat.BeatDescription,
	}, nil
}

type generatedComponents struct {
	Components []struct {
		ComponentType string `json:"component_type"`
		Content       string `json:"content"`
		CharacterName string `json:"character_name"`
		Parenthetical string `json:"parenthetical"`
	} `json:"components"`
}

// decodeSegmentComponents keeps every well-formed component in order and drops the rest.
func decodeSegmentComponents(obj map[string]any) ([]component.Input, error) {
	var out generatedComponents
	if err := llm.Decode(obj, &out); err != nil {
		return nil, err
	}
	inputs := make([]component.Input, 0, len(out.Components))
	for _, c := range out.Components {
		ct := domain.ComponentType(strings.ToUpper(strings.TrimSpace(c.ComponentType)))
		content := strings.TrimSpace(c.Content)
		name := strings.TrimSpace(c.CharacterName)
		paren := strings.TrimSpace(strings.Trim(strings.TrimSpace(c.Parenthetical), "()"))
		in := component.Input{ComponentType: ct, Content: content}
		switch ct {
		case domain.ComponentDialogue:
			if name == "" {
				in.ComponentType = domain.ComponentAction
				break
			}
			in.CharacterName = &name
			if paren != "" {
				in.Parenthetical = &paren
			}
		case domain.ComponentCharacter:
			if name == "" {
				name = content
			}
			in.CharacterName = &name
		}
		if content == "" || in.Validate() != nil {
			continue
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, errors.New("generation returned no usable components")
	}
	return inputs, nil
}

func toGeneratedSegment(rows []*types.SceneSegmentComponent) *GeneratedSegment {
	out := &GeneratedSegment{Components: make([]GeneratedComponent, 0, len(rows))}
	for _, r := range rows {
		out.Components = append(out.Components, GeneratedComponent{
			ComponentID:   r.ID,
			ComponentType: r.ComponentType,
			Position:      r.Position,
			Content:       r.Content,
			CharacterName: r.CharacterName,
			Parenthetical: r.Parenthetical,
		})
	}
	return out
}

// refreshProgress stores min(live segments * 5, 100) on scripts whose progress tracks segments.
func refreshProgress(dbc dbctx.Context, segments repos.SceneSegmentRepo, scripts repos.ScriptRepo, script *types.Script) error {
	if !script.CreationMethod.TracksProgress() {
		return nil
	}
	n, err := segments.CountLiveByScript(dbc, script.ID)
	if err != nil {
		return fmt.Errorf("count live segments: %w", err)
	}
	p := domain.ProgressFor(n)
	if p == script.ScriptProgress {
		return nil
	}
	if err := scripts.UpdateFields(dbc, script.ID, map[string]interface{}{"script_progress": p}); err != nil {
		return fmt.Errorf("update script progress: %w", err)
	}
	script.ScriptProgress = p
	return nil
}
