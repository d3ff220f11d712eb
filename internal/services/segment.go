package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/fountain"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/position"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const maxSegmentPage = 500

var (
	errBeatNotInScript = apierr.NotFound("beat_not_found", "Beat not found or does not belong to this script")
	errSceneNotInBeat  = apierr.BadRequest("scene_description_beat_mismatch", "Scene description does not belong to the specified beat")
)

type SegmentInput struct {
	ScriptID           uuid.UUID         `json:"script_id"`
	BeatID             *uuid.UUID        `json:"beat_id,omitempty"`
	SceneDescriptionID *uuid.UUID        `json:"scene_description_id,omitempty"`
	SegmentNumber      *float64          `json:"segment_number,omitempty"`
	Components         []component.Input `json:"components"`
}

type SegmentPatch struct {
	SegmentNumber      *float64   `json:"segment_number,omitempty"`
	BeatID             *uuid.UUID `json:"beat_id,omitempty"`
	SceneDescriptionID *uuid.UUID `json:"scene_description_id,omitempty"`
}

type BatchSegmentsInput struct {
	ScriptID           uuid.UUID      `json:"script_id"`
	BeatID             *uuid.UUID     `json:"beat_id,omitempty"`
	SceneDescriptionID *uuid.UUID     `json:"scene_description_id,omitempty"`
	Segments           []SegmentInput `json:"segments"`
}

type SegmentList struct {
	Segments []*types.SceneSegment `json:"segments"`
	Total    int64                 `json:"total"`
}

type ComponentPatch struct {
	ComponentType *domain.ComponentType `json:"component_type,omitempty"`
	Position      *float64              `json:"position,omitempty"`
	Content       *string               `json:"content,omitempty"`
	CharacterName *string               `json:"character_name,omitempty"`
	Parenthetical *string               `json:"parenthetical,omitempty"`
}

// ComponentReorder moves one component. Exactly one of NewPosition, AfterComponentID or MoveToEnd
// applies, checked in that order.
type ComponentReorder struct {
	ComponentID      uuid.UUID  `json:"component_id"`
	NewPosition      *float64   `json:"new_position,omitempty"`
	AfterComponentID *uuid.UUID `json:"after_component_id,omitempty"`
	MoveToEnd        bool       `json:"move_to_end,omitempty"`
}

// ComponentUpsert is one autosave entry: an ID updates that live component, no ID creates a new one.
type ComponentUpsert struct {
	ID *uuid.UUID `json:"id,omitempty"`
	component.Input
}

type FromTextInput struct {
	ScriptID           uuid.UUID  `json:"script_id"`
	SegmentNumber      *float64   `json:"segment_number,omitempty"`
	Text               string     `json:"text"`
	BeatID             *uuid.UUID `json:"beat_id,omitempty"`
	SceneDescriptionID *uuid.UUID `json:"scene_description_id,omitempty"`
}

type SegmentService interface {
	Create(ctx context.Context, in SegmentInput) (*types.SceneSegment, error)
	Get(ctx context.Context, id uuid.UUID) (*types.SceneSegment, error)
	Update(ctx context.Context, id uuid.UUID, patch SegmentPatch) (*types.SceneSegment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, id uuid.UUID, segmentNumber float64) (*types.SceneSegment, error)
	BatchCreate(ctx context.Context, in BatchSegmentsInput) ([]*types.SceneSegment, error)
	ListForScript(ctx context.Context, scriptID uuid.UUID, filter repos.SegmentListFilter) (*SegmentList, error)
	NextSegmentNumber(ctx context.Context, scriptID uuid.UUID) (float64, error)

	AddComponent(ctx context.Context, segmentID uuid.UUID, in component.Input) (*types.SceneSegmentComponent, error)
	UpdateComponent(ctx context.Context, id uuid.UUID, patch ComponentPatch) (*types.SceneSegmentComponent, error)
	DeleteComponent(ctx context.Context, id uuid.UUID) error
	ReorderComponent(ctx context.Context, in ComponentReorder) (*types.SceneSegmentComponent, error)
	BatchUpdateComponents(ctx context.Context, segmentID uuid.UUID, in []ComponentUpsert) ([]*types.SceneSegmentComponent, error)
	NextComponentPosition(ctx context.Context, segmentID uuid.UUID) (float64, error)
	AutoFormat(ctx context.Context, id uuid.UUID) (*types.SceneSegmentComponent, error)

	CreateFromText(ctx context.Context, in FromTextInput) (*types.SceneSegment, error)
	ExportFountain(ctx context.Context, scriptID uuid.UUID) (string, error)
}

type segmentService struct {
	db           *gorm.DB
	log          *logger.Logger
	scripts      repos.ScriptRepo
	beats        repos.BeatRepo
	descriptions repos.SceneDescriptionRepo
	segments     repos.SceneSegmentRepo
	components   repos.ComponentRepo
	own          ownership
}

func NewSegmentService(db *gorm.DB, log *logger.Logger, r repos.Set) SegmentService {
	return &segmentService{
		db:           db,
		log:          log.With("service", "SegmentService"),
		scripts:      r.Script,
		beats:        r.Beat,
		descriptions: r.SceneDescription,
		segments:     r.SceneSegment,
		components:   r.Component,
		own:          newOwnership(r),
	}
}

func invalidComponent(err error) error {
	return apierr.BadRequest("invalid_component", err.Error())
}

// checkLinks verifies optional beat / scene description references against the script. A scene
// description must sit under linkedBeat when one is given.
func (s *segmentService) checkLinks(dbc dbctx.Context, scriptID uuid.UUID, beatID, sceneID, linkedBeat *uuid.UUID) error {
	if beatID != nil {
		b, err := s.beats.GetByID(dbc, *beatID)
		if err != nil {
			return fmt.Errorf("load beat: %w", err)
		}
		if b == nil || b.ScriptID != scriptID {
			return errBeatNotInScript
		}
	}
	if sceneID != nil {
		sd, err := s.descriptions.GetByID(dbc, *sceneID)
		if err != nil {
			return fmt.Errorf("load scene description: %w", err)
		}
		if sd == nil {
			return errSceneNotFound
		}
		if linkedBeat != nil && sd.BeatID != *linkedBeat {
			return errSceneNotInBeat
		}
		b, err := s.beats.GetByID(dbc, sd.BeatID)
		if err != nil {
			return fmt.Errorf("load beat: %w", err)
		}
		if b == nil || b.ScriptID != scriptID {
			return errSceneNotFound
		}
	}
	return nil
}

// componentRows validates inputs and fills missing positions after the current maximum.
func componentRows(segmentID uuid.UUID, top *float64, in []component.Input) ([]*types.SceneSegmentComponent, error) {
	rows := make([]*types.SceneSegmentComponent, 0, len(in))
	for _, ci := range in {
		if err := ci.Validate(); err != nil {
			return nil, invalidComponent(err)
		}
		if ci.Position <= 0 {
			ci.Position = position.After(top)
		}
		if top == nil || ci.Position > *top {
			p := ci.Position
			top = &p
		}
		rows = append(rows, ci.Row(segmentID))
	}
	return rows, nil
}

// createIn writes one segment and its components inside the caller's transaction.
func (s *segmentService) createIn(dbc dbctx.Context, script *types.Script, in SegmentInput) (*types.SceneSegment, error) {
	if len(in.Components) == 0 {
		return nil, apierr.BadRequest("missing_components", "a scene segment needs at least one component")
	}
	if err := s.checkLinks(dbc, script.ID, in.BeatID, in.SceneDescriptionID, in.BeatID); err != nil {
		return nil, err
	}
	seg := &types.SceneSegment{ScriptID: script.ID, BeatID: in.BeatID, SceneDescriptionID: in.SceneDescriptionID}
	if in.SegmentNumber != nil {
		seg.SegmentNumber = *in.SegmentNumber
	} else {
		top, err := s.segments.MaxSegmentNumber(dbc, script.ID)
		if err != nil {
			return nil, err
		}
		seg.SegmentNumber = position.After(top)
	}
	created, err := s.segments.Create(dbc, []*types.SceneSegment{seg})
	if err != nil {
		return nil, err
	}
	seg = created[0]
	rows, err := componentRows(seg.ID, nil, in.Components)
	if err != nil {
		return nil, err
	}
	if rows, err = s.components.Create(dbc, rows); err != nil {
		return nil, err
	}
	seg.Components = make([]types.SceneSegmentComponent, 0, len(rows))
	for _, r := range rows {
		seg.Components = append(seg.Components, *r)
	}
	return seg, nil
}

func (s *segmentService) Create(ctx context.Context, in SegmentInput) (*types.SceneSegment, error) {
	script, err := s.own.script(dbctx.Context{Ctx: ctx}, in.ScriptID)
	if err != nil {
		return nil, err
	}
	var seg *types.SceneSegment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		created, err := s.createIn(inner, script, in)
		if err != nil {
			return err
		}
		seg = created
		return refreshProgress(inner, s.segments, s.scripts, script)
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		s.log.Error("Create scene segment failed", "script_id", script.ID, "error", err)
		return nil, fmt.Errorf("create scene segment: %w", err)
	}
	return seg, nil
}

func (s *segmentService) BatchCreate(ctx context.Context, in BatchSegmentsInput) ([]*types.SceneSegment, error) {
	script, err := s.own.script(dbctx.Context{Ctx: ctx}, in.ScriptID)
	if err != nil {
		return nil, err
	}
	out := make([]*types.SceneSegment, 0, len(in.Segments))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, seg := range in.Segments {
			seg.ScriptID = script.ID
			if seg.BeatID == nil {
				seg.BeatID = in.BeatID
			}
			if seg.SceneDescriptionID == nil {
				seg.SceneDescriptionID = in.SceneDescriptionID
			}
			created, err := s.createIn(inner, script, seg)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return refreshProgress(inner, s.segments, s.scripts, script)
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		s.log.Error("Batch create scene segments failed", "script_id", script.ID, "error", err)
		return nil, fmt.Errorf("batch create scene segments: %w", err)
	}
	return out, nil
}

func (s *segmentService) Get(ctx context.Context, id uuid.UUID) (*types.SceneSegment, error) {
	dbc := dbctx.Context{Ctx: ctx}
	seg, _, err := s.own.segment(dbc, id)
	if err != nil {
		return nil, err
	}
	full, err := s.segments.GetWithComponents(dbc, seg.ID)
	if err != nil {
		return nil, fmt.Errorf("load scene segment: %w", err)
	}
	if full == nil {
		return nil, errSegmentNotFound
	}
	return full, nil
}

func (s *segmentService) Update(ctx context.Context, id uuid.UUID, patch SegmentPatch) (*types.SceneSegment, error) {
	dbc := dbctx.Context{Ctx: ctx}
	seg, script, err := s.own.segment(dbc, id)
	if err != nil {
		return nil, err
	}
	linked := seg.BeatID
	if patch.BeatID != nil {
		linked = patch.BeatID
	}
	if err := s.checkLinks(dbc, script.ID, patch.BeatID, patch.SceneDescriptionID, linked); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if patch.SegmentNumber != nil {
		updates["segment_number"] = *patch.SegmentNumber
	}
	if patch.BeatID != nil {
		updates["beat_id"] = *patch.BeatID
	}
	if patch.SceneDescriptionID != nil {
		updates["scene_description_id"] = *patch.SceneDescriptionID
	}
	if err := s.segments.UpdateFields(dbc, seg.ID, updates); err != nil {
		return nil, fmt.Errorf("update scene segment: %w", err)
	}
	return s.Get(ctx, seg.ID)
}

func (s *segmentService) Delete(ctx context.Context, id uuid.UUID) error {
	seg, script, err := s.own.segment(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.segments.SoftDeleteWithComponents(inner, []uuid.UUID{seg.ID}); err != nil {
			return err
		}
		return refreshProgress(inner, s.segments, s.scripts, script)
	})
	if err != nil {
		s.log.Error("Delete scene segment failed", "segment_id", seg.ID, "error", err)
		return fmt.Errorf("delete scene segment: %w", err)
	}
	return nil
}

func (s *segmentService) Reorder(ctx context.Context, id uuid.UUID, segmentNumber float64) (*types.SceneSegment, error) {
	n := segmentNumber
	return s.Update(ctx, id, SegmentPatch{SegmentNumber: &n})
}

func (s *segmentService) ListForScript(ctx context.Context, scriptID uuid.UUID, filter repos.SegmentListFilter) (*SegmentList, error) {
	dbc := dbctx.Context{Ctx: ctx}
	script, err := s.own.script(dbc, scriptID)
	if err != nil {
		return nil, err
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > maxSegmentPage {
		filter.Limit = maxSegmentPage
	}
	rows, total, err := s.segments.ListByScript(dbc, script.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list scene segments: %w", err)
	}
	return &SegmentList{Segments: rows, Total: total}, nil
}

func (s *segmentService) NextSegmentNumber(ctx context.Context, scriptID uuid.UUID) (float64, error) {
	dbc := dbctx.Context{Ctx: ctx}
	script, err := s.own.script(dbc, scriptID)
	if err != nil {
		return 0, err
	}
	top, err := s.segments.MaxSegmentNumber(dbc, script.ID)
	if err != nil {
		return 0, fmt.Errorf("max segment number: %w", err)
	}
	return position.After(top), nil
}

func (s *segmentService) AddComponent(ctx context.Context, segmentID uuid.UUID, in component.Input) (*types.SceneSegmentComponent, error) {
	dbc := dbctx.Context{Ctx: ctx}
	seg, _, err := s.own.segment(dbc, segmentID)
	if err != nil {
		return nil, err
	}
	top, err := s.components.MaxPosition(dbc, seg.ID)
	if err != nil {
		return nil, fmt.Errorf("max component position: %w", err)
	}
	rows, err := componentRows(seg.ID, top, []component.Input{in})
	if err != nil {
		return nil, err
	}
	if rows, err = s.components.Create(dbc, rows); err != nil {
		return nil, fmt.Errorf("add component: %w", err)
	}
	return rows[0], nil
}

func (s *segmentService) UpdateComponent(ctx context.Context, id uuid.UUID, patch ComponentPatch) (*types.SceneSegmentComponent, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, _, _, err := s.own.component(dbc, id)
	if err != nil {
		return nil, err
	}
	in := component.Input{
		ComponentType: c.ComponentType,
		Position:      c.Position,
		Content:       c.Content,
		CharacterName: c.CharacterName,
		Parenthetical: c.Parenthetical,
	}
	if patch.ComponentType != nil {
		in.ComponentType = *patch.ComponentType
		// fields the new type cannot carry are dropped unless the patch sets them
		if in.ComponentType != domain.ComponentDialogue {
			in.Parenthetical = nil
		}
		if in.ComponentType != domain.ComponentDialogue && in.ComponentType != domain.ComponentCharacter {
			in.CharacterName = nil
		}
	}
	if patch.Position != nil {
		in.Position = *patch.Position
	}
	if patch.Content != nil {
		in.Content = *patch.Content
	}
	if patch.CharacterName != nil {
		in.CharacterName = patch.CharacterName
	}
	if patch.Parenthetical != nil {
		in.Parenthetical = patch.Parenthetical
	}
	if err := in.Validate(); err != nil {
		return nil, invalidComponent(err)
	}
	row := in.Row(c.SceneSegmentID)
	if err := s.components.UpdateFields(dbc, c.ID, map[string]interface{}{
		"component_type": row.ComponentType,
		"position":       row.Position,
		"content":        row.Content,
		"character_name": row.CharacterName,
		"parenthetical":  row.Parenthetical,
	}); err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}
	return s.components.GetByID(dbc, c.ID)
}

func (s *segmentService) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	c, _, _, err := s.own.component(dbc, id)
	if err != nil {
		return err
	}
	if err := s.components.SoftDeleteByIDs(dbc, []uuid.UUID{c.ID}); err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	return nil
}

func (s *segmentService) ReorderComponent(ctx context.Context, in ComponentReorder) (*types.SceneSegmentComponent, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, _, _, err := s.own.component(dbc, in.ComponentID)
	if err != nil {
		return nil, err
	}
	var pos float64
	switch {
	case in.NewPosition != nil:
		pos = *in.NewPosition
	case in.AfterComponentID != nil:
		if pos, err = s.positionAfter(dbc, c, *in.AfterComponentID); err != nil {
			return nil, err
		}
	default:
		top, err := s.components.MaxPosition(dbc, c.SceneSegmentID)
		if err != nil {
			return nil, fmt.Errorf("max component position: %w", err)
		}
		if top != nil && *top == c.Position {
			return c, nil
		}
		pos = position.After(top)
	}
	if err := s.components.UpdateFields(dbc, c.ID, map[string]interface{}{"position": pos}); err != nil {
		return nil, fmt.Errorf("reorder component: %w", err)
	}
	c.Position = pos
	return c, nil
}

// positionAfter finds a key between anchor and the sibling that currently follows it, ignoring c itself.
func (s *segmentService) positionAfter(dbc dbctx.Context, c *types.SceneSegmentComponent, anchorID uuid.UUID) (float64, error) {
	siblings, err := s.components.ListBySegmentIDs(dbc, []uuid.UUID{c.SceneSegmentID})
	if err != nil {
		return 0, fmt.Errorf("list components: %w", err)
	}
	var prev, next *float64
	for i, sib := range siblings {
		if sib.ID != anchorID {
			continue
		}
		p := sib.Position
		prev = &p
		for _, after := range siblings[i+1:] {
			if after.ID == c.ID {
				continue
			}
			n := after.Position
			next = &n
			break
		}
		break
	}
	if prev == nil {
		return 0, apierr.NotFound("component_not_found", "Anchor component not found in this segment")
	}
	return position.Between(prev, next), nil
}

func (s *segmentService) BatchUpdateComponents(ctx context.Context, segmentID uuid.UUID, in []ComponentUpsert) ([]*types.SceneSegmentComponent, error) {
	seg, _, err := s.own.segment(dbctx.Context{Ctx: ctx}, segmentID)
	if err != nil {
		return nil, err
	}
	for _, u := range in {
		if err := u.Input.Validate(); err != nil {
			return nil, invalidComponent(err)
		}
	}
	var ids []uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.components.ListBySegmentIDs(inner, []uuid.UUID{seg.ID})
		if err != nil {
			return err
		}
		live := make(map[uuid.UUID]bool, len(existing))
		var top *float64
		for _, c := range existing {
			live[c.ID] = true
			if top == nil || c.Position > *top {
				p := c.Position
				top = &p
			}
		}
		for _, u := range in {
			if u.ID != nil && live[*u.ID] {
				row := u.Input.Row(seg.ID)
				if err := s.components.UpdateFields(inner, *u.ID, map[string]interface{}{
					"component_type": row.ComponentType,
					"position":       row.Position,
					"content":        row.Content,
					"character_name": row.CharacterName,
					"parenthetical":  row.Parenthetical,
				}); err != nil {
					return err
				}
				ids = append(ids, *u.ID)
				continue
			}
			rows, err := componentRows(seg.ID, top, []component.Input{u.Input})
			if err != nil {
				return err
			}
			if rows, err = s.components.Create(inner, rows); err != nil {
				return err
			}
			p := rows[0].Position
			if top == nil || p > *top {
				top = &p
			}
			ids = append(ids, rows[0].ID)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Batch update components failed", "segment_id", seg.ID, "error", err)
		return nil, fmt.Errorf("batch update components: %w", err)
	}
	rows, err := s.components.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, fmt.Errorf("reload components: %w", err)
	}
	byID := make(map[uuid.UUID]*types.SceneSegmentComponent, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]*types.SceneSegmentComponent, 0, len(ids))
	for _, id := range ids {
		if r := byID[id]; r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *segmentService) NextComponentPosition(ctx context.Context, segmentID uuid.UUID) (float64, error) {
	dbc := dbctx.Context{Ctx: ctx}
	seg, _, err := s.own.segment(dbc, segmentID)
	if err != nil {
		return 0, err
	}
	top, err := s.components.MaxPosition(dbc, seg.ID)
	if err != nil {
		return 0, fmt.Errorf("max component position: %w", err)
	}
	return position.After(top), nil
}

func (s *segmentService) AutoFormat(ctx context.Context, id uuid.UUID) (*types.SceneSegmentComponent, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, _, _, err := s.own.component(dbc, id)
	if err != nil {
		return nil, err
	}
	component.AutoFormat(c)
	if err := s.components.UpdateFields(dbc, c.ID, map[string]interface{}{
		"content":        c.Content,
		"character_name": c.CharacterName,
		"parenthetical":  c.Parenthetical,
	}); err != nil {
		return nil, fmt.Errorf("auto-format component: %w", err)
	}
	return c, nil
}

func (s *segmentService) CreateFromText(ctx context.Context, in FromTextInput) (*types.SceneSegment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apierr.BadRequest("empty_text", "text is required")
	}
	parsed := fountain.Parse(in.Text)
	if len(parsed) == 0 {
		return nil, apierr.BadRequest("empty_text", "no screenplay components found in text")
	}
	positions := position.Sequence(len(parsed))
	inputs := make([]component.Input, 0, len(parsed))
	for i, row := range parsed {
		inputs = append(inputs, component.Input{
			ComponentType: row.ComponentType,
			Position:      positions[i],
			Content:       row.Content,
			CharacterName: row.CharacterName,
			Parenthetical: row.Parenthetical,
		})
	}
	return s.Create(ctx, SegmentInput{
		ScriptID:           in.ScriptID,
		BeatID:             in.BeatID,
		SceneDescriptionID: in.SceneDescriptionID,
		SegmentNumber:      in.SegmentNumber,
		Components:         inputs,
	})
}

func (s *segmentService) ExportFountain(ctx context.Context, scriptID uuid.UUID) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	script, err := s.own.script(dbc, scriptID)
	if err != nil {
		return "", err
	}
	rows, _, err := s.segments.ListByScript(dbc, script.ID, repos.SegmentListFilter{})
	if err != nil {
		return "", fmt.Errorf("list scene segments: %w", err)
	}
	if len(rows) == 0 {
		return "", apierr.NotFound("no_scene_segments", "No scene segments found for this script")
	}
	return fountain.RenderScript(rows), nil
}
