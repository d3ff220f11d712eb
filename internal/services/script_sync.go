package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/position"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const MsgChangesApplied = "Script changes applied successfully"

// ComponentChange edits an existing component. ComponentType may be PARENTHETICAL, in which case only the
// parenthetical of the referenced DIALOGUE row changes.
type ComponentChange struct {
	ID            uuid.UUID            `json:"id"`
	ComponentType domain.ComponentType `json:"component_type"`
	Position      float64              `json:"position"`
	Content       string               `json:"content"`
	CharacterName *string              `json:"character_name,omitempty"`
	Parenthetical *string              `json:"parenthetical,omitempty"`
}

type NewComponent struct {
	ComponentType domain.ComponentType `json:"component_type"`
	Position      float64              `json:"position"`
	Content       string               `json:"content"`
	CharacterName *string              `json:"character_name,omitempty"`
	Parenthetical *string              `json:"parenthetical,omitempty"`
	FrontendID    string               `json:"frontendId"`
}

func (c NewComponent) input() component.Input {
	return component.Input{
		ComponentType: c.ComponentType,
		Position:      c.Position,
		Content:       c.Content,
		CharacterName: c.CharacterName,
		Parenthetical: c.Parenthetical,
	}
}

type NewSegment struct {
	SegmentNumber      float64        `json:"segmentNumber"`
	BeatID             string         `json:"beatId,omitempty"`
	SceneDescriptionID string         `json:"sceneDescriptionId,omitempty"`
	FrontendID         string         `json:"frontendId"`
	Components         []NewComponent `json:"components"`
}

type NewComponentInSegment struct {
	SegmentID string `json:"segment_id"`
	NewComponent
}

type ScriptChangesRequest struct {
	ChangedSegments                 map[string][]ComponentChange `json:"changedSegments"`
	DeletedElements                 []string                     `json:"deletedElements"`
	DeletedSegments                 []string                     `json:"deletedSegments"`
	NewSegments                     []NewSegment                 `json:"newSegments"`
	NewComponentsInExistingSegments []NewComponentInSegment      `json:"newComponentsInExistingSegments"`
}

type IDMappings struct {
	Segments   map[string]string `json:"segments"`
	Components map[string]string `json:"components"`
}

type ScriptChangesResponse struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message"`
	UpdatedComponents int        `json:"updated_components"`
	DeletedComponents int        `json:"deleted_components"`
	DeletedSegments   int        `json:"deleted_segments"`
	CreatedSegments   int        `json:"created_segments"`
	CreatedComponents int        `json:"created_components"`
	IDMappings        IDMappings `json:"idMappings"`
}

type ScriptSyncService interface {
	ApplyChanges(ctx context.Context, scriptID uuid.UUID, req ScriptChangesRequest) (*ScriptChangesResponse, error)
}

type scriptSyncService struct {
	db           *gorm.DB
	log          *logger.Logger
	scripts      repos.ScriptRepo
	beats        repos.BeatRepo
	descriptions repos.SceneDescriptionRepo
	segments     repos.SceneSegmentRepo
	components   repos.ComponentRepo
	own          ownership
}

func NewScriptSyncService(db *gorm.DB, log *logger.Logger, r repos.Set) ScriptSyncService {
	return &scriptSyncService{
		db:           db,
		log:          log.With("service", "ScriptSyncService"),
		scripts:      r.Script,
		beats:        r.Beat,
		descriptions: r.SceneDescription,
		segments:     r.SceneSegment,
		components:   r.Component,
		own:          newOwnership(r),
	}
}

// syncRun carries one ApplyChanges call through its stages.
type syncRun struct {
	s      *scriptSyncService
	dbc    dbctx.Context
	script *types.Script
	res    *ScriptChangesResponse
}

func (s *scriptSyncService) ApplyChanges(ctx context.Context, scriptID uuid.UUID, req ScriptChangesRequest) (*ScriptChangesResponse, error) {
	script, err := s.own.script(dbctx.Context{Ctx: ctx}, scriptID)
	if err != nil {
		return nil, err
	}
	res := &ScriptChangesResponse{
		IDMappings: IDMappings{Segments: map[string]string{}, Components: map[string]string{}},
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &syncRun{s: s, dbc: dbctx.Context{Ctx: ctx, Tx: tx}, script: script, res: res}
		stages := []struct {
			name string
			fn   func() error
		}{
			{"create_segments", func() error { return run.createSegments(req.NewSegments) }},
			{"create_components", func() error { return run.createComponents(req.NewComponentsInExistingSegments) }},
			{"update_components", func() error { return run.updateComponents(req.ChangedSegments) }},
			{"delete_components", func() error { return run.deleteComponents(req.DeletedElements) }},
			{"delete_segments", func() error { return run.deleteSegments(req.DeletedSegments) }},
			{"refresh_progress", func() error { return refreshProgress(run.dbc, s.segments, s.scripts, script) }},
		}
		for _, st := range stages {
			if err := st.fn(); err != nil {
				return fmt.Errorf("%s: %w", st.name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Apply script changes failed", "script_id", script.ID, "error", err)
		observability.Current().ObserveSync("rolled_back", nil)
		return nil, fmt.Errorf("apply script changes: %w", err)
	}
	observability.Current().ObserveSync("committed", map[string]int{
		"create_segments":   res.CreatedSegments,
		"create_components": res.CreatedComponents,
		"update_components": res.UpdatedComponents,
		"delete_components": res.DeletedComponents,
		"delete_segments":   res.DeletedSegments,
	})
	res.Success = true
	res.Message = MsgChangesApplied
	s.log.Info("Applied script changes",
		"script_id", script.ID,
		"created_segments", res.CreatedSegments,
		"created_components", res.CreatedComponents,
		"updated_components", res.UpdatedComponents,
		"deleted_components", res.DeletedComponents,
		"deleted_segments", res.DeletedSegments,
	)
	return res, nil
}

func (r *syncRun) skip(what string, kv ...interface{}) {
	r.s.log.Warn("Skipping stale sync item", append([]interface{}{"item", what, "script_id", r.script.ID}, kv...)...)
}

func parseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	return id, err == nil && id != uuid.Nil
}

// segmentsOfScript loads the live segments among ids that belong to the run's script.
func (r *syncRun) segmentsOfScript(ids []uuid.UUID) (map[uuid.UUID]*types.SceneSegment, error) {
	rows, err := r.s.segments.GetByIDs(r.dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*types.SceneSegment, len(rows))
	for _, seg := range rows {
		if seg.ScriptID == r.script.ID {
			out[seg.ID] = seg
		}
	}
	return out, nil
}

// componentRows validates and converts create inputs; invalid and PARENTHETICAL rows are dropped.
func (r *syncRun) componentRows(segmentID uuid.UUID, in []NewComponent) ([]*types.SceneSegmentComponent, []string) {
	rows := make([]*types.SceneSegmentComponent, 0, len(in))
	frontend := make([]string, 0, len(in))
	for _, c := range in {
		ci := c.input()
		if err := ci.Validate(); err != nil {
			r.skip("component", "segment_id", segmentID, "frontend_id", c.FrontendID, "error", err)
			continue
		}
		rows = append(rows, ci.Row(segmentID))
		frontend = append(frontend, c.FrontendID)
	}
	return rows, frontend
}

func (r *syncRun) mapComponents(rows []*types.SceneSegmentComponent, frontend []string) {
	for i, row := range rows {
		if frontend[i] != "" {
			r.res.IDMappings.Components[frontend[i]] = row.ID.String()
		}
	}
	r.res.CreatedComponents += len(rows)
}

func (r *syncRun) createSegments(in []NewSegment) error {
	if len(in) == 0 {
		return nil
	}
	top, err := r.s.segments.MaxSegmentNumber(r.dbc, r.script.ID)
	if err != nil {
		return err
	}
	for _, ns := range in {
		seg := &types.SceneSegment{ScriptID: r.script.ID, SegmentNumber: ns.SegmentNumber}
		if seg.SegmentNumber <= 0 {
			seg.SegmentNumber = position.After(top)
		}
		if top == nil || seg.SegmentNumber > *top {
			n := seg.SegmentNumber
			top = &n
		}
		if seg.BeatID, err = r.ownedBeat(ns.BeatID); err != nil {
			return err
		}
		if seg.SceneDescriptionID, err = r.ownedSceneDescription(ns.SceneDescriptionID); err != nil {
			return err
		}
		created, err := r.s.segments.Create(r.dbc, []*types.SceneSegment{seg})
		if err != nil {
			return err
		}
		seg = created[0]
		if ns.FrontendID != "" {
			r.res.IDMappings.Segments[ns.FrontendID] = seg.ID.String()
		}
		r.res.CreatedSegments++

		rows, frontend := r.componentRows(seg.ID, ns.Components)
		if rows, err = r.s.components.Create(r.dbc, rows); err != nil {
			return err
		}
		r.mapComponents(rows, frontend)
	}
	return nil
}

// ownedBeat resolves an optional beat reference; references outside the script are dropped.
func (r *syncRun) ownedBeat(raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		r.skip("beat_ref", "beat_id", raw)
		return nil, nil
	}
	b, err := r.s.beats.GetByID(r.dbc, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.ScriptID != r.script.ID {
		r.skip("beat_ref", "beat_id", id)
		return nil, nil
	}
	return &b.ID, nil
}

func (r *syncRun) ownedSceneDescription(raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		r.skip("scene_description_ref", "scene_description_id", raw)
		return nil, nil
	}
	sd, err := r.s.descriptions.GetByID(r.dbc, id)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		r.skip("scene_description_ref", "scene_description_id", id)
		return nil, nil
	}
	b, err := r.s.beats.GetByID(r.dbc, sd.BeatID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.ScriptID != r.script.ID {
		r.skip("scene_description_ref", "scene_description_id", id)
		return nil, nil
	}
	return &sd.ID, nil
}

func (r *syncRun) createComponents(in []NewComponentInSegment) error {
	if len(in) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(in))
	for _, c := range in {
		if id, ok := parseID(c.SegmentID); ok {
			ids = append(ids, id)
		}
	}
	owned, err := r.segmentsOfScript(ids)
	if err != nil {
		return err
	}
	for _, c := range in {
		id, _ := parseID(c.SegmentID)
		if owned[id] == nil {
			r.skip("segment", "segment_id", c.SegmentID, "frontend_id", c.FrontendID)
			continue
		}
		rows, frontend := r.componentRows(id, []NewComponent{c.NewComponent})
		if rows, err = r.s.components.Create(r.dbc, rows); err != nil {
			return err
		}
		r.mapComponents(rows, frontend)
	}
	return nil
}

func (r *syncRun) updateComponents(changed map[string][]ComponentChange) error {
	if len(changed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(changed))
	segIDs := make([]uuid.UUID, 0, len(changed))
	var compIDs []uuid.UUID
	for k, list := range changed {
		keys = append(keys, k)
		if id, ok := parseID(k); ok {
			segIDs = append(segIDs, id)
		}
		for _, c := range list {
			compIDs = append(compIDs, c.ID)
		}
	}
	sort.Strings(keys)
	owned, err := r.segmentsOfScript(segIDs)
	if err != nil {
		return err
	}
	rows, err := r.s.components.GetByIDs(r.dbc, compIDs)
	if err != nil {
		return err
	}
	live := make(map[uuid.UUID]*types.SceneSegmentComponent, len(rows))
	for _, c := range rows {
		live[c.ID] = c
	}

	for _, k := range keys {
		segID, _ := parseID(k)
		if owned[segID] == nil {
			r.skip("segment", "segment_id", k)
			continue
		}
		for _, ch := range changed[k] {
			cur := live[ch.ID]
			if cur == nil || cur.SceneSegmentID != segID {
				r.skip("component", "segment_id", segID, "component_id", ch.ID)
				continue
			}
			if ch.ComponentType == domain.ComponentParenthetical && cur.ComponentType != domain.ComponentDialogue {
				r.skip("parenthetical", "component_id", ch.ID, "component_type", cur.ComponentType)
				continue
			}
			updates, err := changeUpdates(ch)
			if err != nil {
				r.skip("component", "component_id", ch.ID, "error", err)
				continue
			}
			if err := r.s.components.UpdateFields(r.dbc, cur.ID, updates); err != nil {
				return err
			}
			r.res.UpdatedComponents++
		}
	}
	return nil
}

// changeUpdates builds the column set for one edit, folding PARENTHETICAL into the parent row's field.
func changeUpdates(ch ComponentChange) (map[string]interface{}, error) {
	if ch.ComponentType == domain.ComponentParenthetical {
		paren := ch.Parenthetical
		if paren == nil {
			paren = &ch.Content
		}
		return map[string]interface{}{"parenthetical": nullableTrimmed(paren)}, nil
	}
	in := component.Input{
		ComponentType: ch.ComponentType,
		Position:      ch.Position,
		Content:       ch.Content,
		CharacterName: ch.CharacterName,
		Parenthetical: ch.Parenthetical,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	row := in.Row(ch.ID)
	return map[string]interface{}{
		"component_type": row.ComponentType,
		"position":       row.Position,
		"content":        row.Content,
		"character_name": row.CharacterName,
		"parenthetical":  row.Parenthetical,
	}, nil
}

func nullableTrimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.Trim(strings.TrimSpace(*s), "()")
	if t = strings.TrimSpace(t); t == "" {
		return nil
	}
	return &t
}

func (r *syncRun) deleteComponents(raw []string) error {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, ok := parseID(s); ok {
			ids = append(ids, id)
		} else {
			r.skip("component", "component_id", s)
		}
	}
	rows, err := r.s.components.GetByIDs(r.dbc, ids)
	if err != nil {
		return err
	}
	segIDs := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		segIDs = append(segIDs, c.SceneSegmentID)
	}
	owned, err := r.segmentsOfScript(segIDs)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]bool, len(rows))
	del := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		found[c.ID] = true
		if owned[c.SceneSegmentID] == nil {
			r.skip("component", "component_id", c.ID)
			continue
		}
		del = append(del, c.ID)
	}
	for _, id := range ids {
		if !found[id] {
			r.skip("component", "component_id", id)
		}
	}
	if err := r.s.components.SoftDeleteByIDs(r.dbc, del); err != nil {
		return err
	}
	r.res.DeletedComponents += len(del)
	return nil
}

func (r *syncRun) deleteSegments(raw []string) error {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, ok := parseID(s); ok {
			ids = append(ids, id)
		} else {
			r.skip("segment", "segment_id", s)
		}
	}
	owned, err := r.segmentsOfScript(ids)
	if err != nil {
		return err
	}
	del := make([]uuid.UUID, 0, len(owned))
	for _, id := range ids {
		if owned[id] == nil {
			r.skip("segment", "segment_id", id)
			continue
		}
		del = append(del, id)
		delete(owned, id)
	}
	if err := r.s.segments.SoftDeleteWithComponents(r.dbc, del); err != nil {
		return err
	}
	r.res.DeletedSegments += len(del)
	return nil
}
