package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/db"
	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/beatsheet"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/prompts"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type BeatSheetView struct {
	Script          *types.Script          `json:"script"`
	MasterBeatSheet *types.MasterBeatSheet `json:"master_beat_sheet"`
	Beats           []*types.Beat          `json:"beats"`
}

type BeatPatch struct {
	BeatTitle       *string         `json:"beat_title,omitempty"`
	BeatDescription *string         `json:"beat_description,omitempty"`
	BeatAct         *domain.BeatAct `json:"beat_act,omitempty"`
}

// TestBeatInput drives the non-persisting generation endpoints.
type TestBeatInput struct {
	Title         string               `json:"title"`
	Genre         string               `json:"genre"`
	Story         string               `json:"story"`
	BeatSheetType domain.BeatSheetType `json:"beat_sheet_type,omitempty"`
}

// StreamEmitter receives streaming events; returning an error stops the stream.
type StreamEmitter func(event string, data any) error

type BeatSheetService interface {
	ListMasterBeatSheets(ctx context.Context) ([]*types.MasterBeatSheet, error)
	CreateWithAI(ctx context.Context, in ScriptInput, sheetType domain.BeatSheetType) (*BeatSheetView, error)
	GetBeatSheet(ctx context.Context, scriptID uuid.UUID) (*BeatSheetView, error)
	UpdateBeat(ctx context.Context, beatID uuid.UUID, patch BeatPatch) (*types.Beat, error)
	TestGenerate(ctx context.Context, in TestBeatInput) (*beatsheet.Sheet, error)
	StreamTestGenerate(ctx context.Context, in TestBeatInput, emit StreamEmitter) error
}

type beatSheetService struct {
	db      *gorm.DB
	log     *logger.Logger
	ai      llm.Client
	usage   UsageService
	scripts repos.ScriptRepo
	masters repos.MasterBeatSheetRepo
	beats   repos.BeatRepo
	own     ownership
}

func NewBeatSheetService(db *gorm.DB, log *logger.Logger, ai llm.Client, usage UsageService, r repos.Set) BeatSheetService {
	return &beatSheetService{
		db:      db,
		log:     log.With("service", "BeatSheetService"),
		ai:      ai,
		usage:   usage,
		scripts: r.Script,
		masters: r.MasterBeatSheet,
		beats:   r.Beat,
		own:     newOwnership(r),
	}
}

func (s *beatSheetService) ListMasterBeatSheets(ctx context.Context) ([]*types.MasterBeatSheet, error) {
	out, err := s.masters.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list master beat sheets: %w", err)
	}
	return out, nil
}

func (s *beatSheetService) master(ctx context.Context, sheetType domain.BeatSheetType) (*types.MasterBeatSheet, error) {
	if sheetType == "" {
		sheetType = domain.BeatSheetBlakeSnyder
	}
	m, err := s.masters.GetByType(dbctx.Context{Ctx: ctx}, sheetType)
	if err != nil {
		return nil, fmt.Errorf("load master beat sheet: %w", err)
	}
	if m == nil {
		return nil, errMasterNotFound
	}
	return m, nil
}

func (s *beatSheetService) prompt(name prompts.PromptName, title, genre, story string, m *types.MasterBeatSheet) (prompts.Prompt, error) {
	tmpl, err := m.DecodeTemplate()
	if err != nil {
		return prompts.Prompt{}, err
	}
	beatsJSON, err := json.Marshal(tmpl.Beats)
	if err != nil {
		return prompts.Prompt{}, err
	}
	return prompts.Build(name, prompts.Input{
		ScriptTitle:       title,
		Genre:             genre,
		Story:             story,
		TemplateName:      m.Name,
		TemplateBeatsJSON: string(beatsJSON),
		NumberOfBeats:     m.NumberOfBeats,
	})
}

func (s *beatSheetService) generate(ctx context.Context, title, genre, story string, m *types.MasterBeatSheet) (*beatsheet.Sheet, prompts.Prompt, error) {
	p, err := s.prompt(prompts.PromptBeatSheet, title, genre, story, m)
	if err != nil {
		return nil, p, apierr.BadRequest("invalid_beat_sheet_request", err.Error())
	}
	obj, err := s.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		s.log.Error("Beat sheet generation failed", "beat_sheet_type", m.BeatSheetType, "error", err)
		return nil, p, apierr.BadGateway("generation_failed", fmt.Errorf("beat sheet generation failed: %w", err))
	}
	var sheet beatsheet.Sheet
	if err := llm.Decode(obj, &sheet); err != nil || len(sheet.Beats) == 0 {
		if err == nil {
			err = errors.New("no beats returned")
		}
		return nil, p, apierr.BadGateway("generation_failed", fmt.Errorf("invalid beat sheet: %w", err))
	}
	return &sheet, p, nil
}

func (s *beatSheetService) CreateWithAI(ctx context.Context, in ScriptInput, sheetType domain.BeatSheetType) (*BeatSheetView, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	in.CreationMethod = domain.CreationWithAI
	if err := in.normalize(); err != nil {
		return nil, err
	}
	m, err := s.master(ctx, sheetType)
	if err != nil {
		return nil, err
	}

	sheet, p, err := s.generate(ctx, in.Title, in.Genre, in.Story, m)
	if err != nil {
		return nil, err
	}
	complete, _ := json.Marshal(sheet)

	view := &BeatSheetView{MasterBeatSheet: m}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		created, err := s.scripts.Create(dbc, []*types.Script{in.row(uid)})
		if err != nil {
			return fmt.Errorf("create script: %w", err)
		}
		view.Script = created[0]
		rows, err := beatsheet.ToBeats(view.Script.ID, m, sheet.Beats)
		if err != nil {
			return apierr.BadGateway("generation_failed", err)
		}
		rows[0].CompleteJSON = datatypes.JSON(complete)
		if view.Beats, err = s.beats.Create(dbc, rows); err != nil {
			return fmt.Errorf("create beats: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("CreateWithAI failed", "error", err)
		return nil, err
	}
	_ = s.usage.LogCall(dbctx.Context{Ctx: ctx}, uid, billing.CallBeatGeneration, &view.Script.ID,
		usageMetadata(s.ai.Model(), p.User, string(complete), map[string]any{"beat_sheet_type": m.BeatSheetType, "beats": len(view.Beats)}))
	s.log.Info("Created script with AI beat sheet", "script_id", view.Script.ID, "beats", len(view.Beats))
	return view, nil
}

func (s *beatSheetService) GetBeatSheet(ctx context.Context, scriptID uuid.UUID) (*BeatSheetView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	script, err := s.own.script(dbc, scriptID)
	if err != nil {
		return nil, err
	}
	if script.CreationMethod != domain.CreationWithAI {
		return nil, errNotAIScript
	}
	beats, err := s.beats.ListByScript(dbc, script.ID)
	if err != nil {
		return nil, fmt.Errorf("list beats: %w", err)
	}
	if len(beats) == 0 {
		return nil, apierr.NotFound("beat_sheet_not_found", "Beat sheet not found")
	}
	m, err := s.masters.GetByID(dbc, beats[0].MasterBeatSheetID)
	if err != nil {
		return nil, fmt.Errorf("load master beat sheet: %w", err)
	}
	if m == nil {
		return nil, errMasterNotFound
	}
	if len(beats) < m.NumberOfBeats {
		return nil, apierr.BadRequest("incomplete_beat_sheet",
			fmt.Sprintf("Beat sheet is incomplete: %d of %d beats", len(beats), m.NumberOfBeats))
	}
	return &BeatSheetView{Script: script, MasterBeatSheet: m, Beats: beats}, nil
}

func (s *beatSheetService) UpdateBeat(ctx context.Context, beatID uuid.UUID, patch BeatPatch) (*types.Beat, error) {
	dbc := dbctx.Context{Ctx: ctx}
	beat, _, err := s.own.beat(dbc, beatID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.BeatTitle != nil {
		t := strings.TrimSpace(*patch.BeatTitle)
		if t == "" {
			return nil, apierr.BadRequest("invalid_beat", "beat_title cannot be empty")
		}
		if t != beat.BeatTitle {
			updates["beat_title"] = t
		}
	}
	if patch.BeatDescription != nil && *patch.BeatDescription != beat.BeatDescription {
		updates["beat_description"] = *patch.BeatDescription
	}
	if patch.BeatAct != nil && *patch.BeatAct != beat.BeatAct {
		if !patch.BeatAct.Valid() {
			return nil, apierr.BadRequest("invalid_beat", fmt.Sprintf("invalid beat_act %q", *patch.BeatAct))
		}
		updates["beat_act"] = *patch.BeatAct
	}
	if len(updates) == 0 {
		return beat, nil
	}
	if err := s.beats.UpdateFields(dbc, beat.ID, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("duplicate_beat_title", "Another beat in this script already has that title")
		}
		return nil, fmt.Errorf("update beat: %w", err)
	}
	return s.beats.GetByID(dbc, beat.ID)
}

func (s *beatSheetService) TestGenerate(ctx context.Context, in TestBeatInput) (*beatsheet.Sheet, error) {
	m, err := s.master(ctx, in.BeatSheetType)
	if err != nil {
		return nil, err
	}
	sheet, _, err := s.generate(ctx, in.Title, in.Genre, in.Story, m)
	return sheet, err
}

// StreamTestGenerate emits "delta" for raw text, "beat" for each closed beat object, then "done" with the
// full sheet or "error".
func (s *beatSheetService) StreamTestGenerate(ctx context.Context, in TestBeatInput, emit StreamEmitter) error {
	m, err := s.master(ctx, in.BeatSheetType)
	if err != nil {
		return err
	}
	p, err := s.prompt(prompts.PromptBeatSheetStream, in.Title, in.Genre, in.Story, m)
	if err != nil {
		return apierr.BadRequest("invalid_beat_sheet_request", err.Error())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	dec := beatsheet.NewStreamDecoder()
	var emitErr error
	var beats []beatsheet.GeneratedBeat
	_, err = s.ai.StreamText(ctx, p.System, p.User, func(delta string) {
		if emitErr != nil {
			return
		}
		if emitErr = emit("delta", map[string]string{"text": delta}); emitErr != nil {
			cancel()
			return
		}
		done, derr := dec.Write(delta)
		for _, b := range done {
			beats = append(beats, b)
			if emitErr = emit("beat", b); emitErr != nil {
				cancel()
				return
			}
		}
		if derr != nil {
			s.log.Warn("Streamed beat could not be decoded", "error", derr)
		}
	})
	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		s.log.Warn("Beat sheet stream failed", "error", err)
		return emit("error", map[string]string{"message": err.Error()})
	}
	return emit("done", beatsheet.Sheet{Beats: beats})
}
