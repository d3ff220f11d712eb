package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/prompts"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const (
	MsgAppliedAndRecorded  = "Alternative applied and selection recorded"
	MsgAppliedSameTheme    = "Alternative applied; same theme as the previous selection, history unchanged"
	MsgAlreadyAppliedNewly = "Alternative already applied, but selection recorded"
	MsgAlreadyApplied      = "Alternative already applied and previously selected"
)

type AlternativeView struct {
	AlternativeType domain.AlternativeTheme `json:"alternative_type"`
	Text            string                  `json:"text"`
	Rationale       string                  `json:"rationale"`
}

type TransformResult struct {
	ComponentID  uuid.UUID            `json:"component_id"`
	Kind         domain.TransformKind `json:"kind"`
	OriginalText string               `json:"original_text"`
	Alternatives []AlternativeView    `json:"alternatives"`
}

type ApplyResult struct {
	Component   *types.SceneSegmentComponent `json:"component"`
	WasUpdated  bool                         `json:"was_updated"`
	WasRecorded bool                         `json:"was_recorded"`
	Message     string                       `json:"message"`
}

type TransformService interface {
	Transform(ctx context.Context, componentID uuid.UUID, kind domain.TransformKind) (*TransformResult, error)
	Apply(ctx context.Context, componentID uuid.UUID, kind domain.TransformKind, selectedText string) (*ApplyResult, error)
}

type transformService struct {
	db           *gorm.DB
	log          *logger.Logger
	ai           llm.Client
	usage        UsageService
	components   repos.ComponentRepo
	alternatives repos.AlternativeRepo
	history      repos.SelectionHistoryRepo
	own          ownership
}

func NewTransformService(db *gorm.DB, log *logger.Logger, ai llm.Client, usage UsageService, r repos.Set) TransformService {
	return &transformService{
		db:           db,
		log:          log.With("service", "TransformService"),
		ai:           ai,
		usage:        usage,
		components:   r.Component,
		alternatives: r.Alternative,
		history:      r.SelectionHistory,
		own:          newOwnership(r),
	}
}

type generatedAlternative struct {
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

func (s *transformService) Transform(ctx context.Context, componentID uuid.UUID, kind domain.TransformKind) (*TransformResult, error) {
	if !kind.Valid() {
		return nil, apierr.BadRequest("invalid_transform_type", fmt.Sprintf("unknown transform type %q", kind))
	}
	dbc := dbctx.Context{Ctx: ctx}
	c, _, script, err := s.own.component(dbc, componentID)
	if err != nil {
		return nil, err
	}
	if body, err := component.FromRow(c); err != nil || !component.Transformable(body) {
		return nil, apierr.BadRequest("component_not_transformable", fmt.Sprintf("cannot transform component of type %s", c.ComponentType))
	}

	name, err := prompts.ForTransform(kind)
	if err != nil {
		return nil, apierr.BadRequest("invalid_transform_type", err.Error())
	}
	in := prompts.Input{
		ScriptTitle:   script.Title,
		Genre:         script.Genre,
		ComponentType: string(c.ComponentType),
		Content:       c.Content,
	}
	if c.ComponentType == domain.ComponentDialogue {
		in.CharacterName = derefString(c.CharacterName)
		in.Parenthetical = derefString(c.Parenthetical)
	}
	p, err := prompts.Build(name, in)
	if err != nil {
		return nil, apierr.BadRequest("invalid_component", err.Error())
	}
	obj, err := s.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		s.log.Error("Transform generation failed", "component_id", c.ID, "kind", kind, "error", err)
		observability.Current().IncTransform(string(kind), "generation_failed")
		return nil, apierr.BadGateway("generation_failed", err)
	}
	var out map[string]generatedAlternative
	if err := llm.Decode(obj, &out); err != nil {
		return nil, apierr.BadGateway("generation_failed", err)
	}
	rows := make([]*types.ComponentAlternative, 0, len(domain.Themes))
	for _, th := range domain.Themes {
		alt, ok := out[string(th)]
		if !ok || strings.TrimSpace(alt.Text) == "" {
			return nil, apierr.BadGateway("generation_failed", fmt.Errorf("missing %s alternative", th))
		}
		rows = append(rows, &types.ComponentAlternative{
			AlternativeType: th,
			Text:            strings.TrimSpace(alt.Text),
			Rationale:       strings.TrimSpace(alt.Rationale),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.alternatives.ReplaceSet(dbctx.Context{Ctx: ctx, Tx: tx}, c.ID, kind, rows)
		return err
	})
	if err != nil {
		s.log.Error("Persist alternatives failed", "component_id", c.ID, "kind", kind, "error", err)
		return nil, fmt.Errorf("persist alternatives: %w", err)
	}
	_ = s.usage.LogCall(dbc, script.UserID, transformCallType(kind), &script.ID,
		usageMetadata(s.ai.Model(), p.User, jsonText(obj), map[string]any{"component_id": c.ID.String()}))

	observability.Current().IncTransform(string(kind), "success")

	res := &TransformResult{ComponentID: c.ID, Kind: kind, OriginalText: c.Content}
	for _, r := range rows {
		res.Alternatives = append(res.Alternatives, AlternativeView{AlternativeType: r.AlternativeType, Text: r.Text, Rationale: r.Rationale})
	}
	return res, nil
}

func (s *transformService) Apply(ctx context.Context, componentID uuid.UUID, kind domain.TransformKind, selectedText string) (*ApplyResult, error) {
	if !kind.Valid() {
		return nil, apierr.BadRequest("invalid_transform_type", fmt.Sprintf("unknown transform type %q", kind))
	}
	if strings.TrimSpace(selectedText) == "" {
		return nil, apierr.BadRequest("missing_alternative_text", "alternative text is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	c, _, _, err := s.own.component(dbc, componentID)
	if err != nil {
		return nil, err
	}
	alt, err := s.alternatives.FindByText(dbc, c.ID, kind, selectedText)
	if err != nil {
		return nil, fmt.Errorf("find alternative: %w", err)
	}
	if alt == nil {
		return nil, apierr.NotFound("alternative_not_found", "Alternative not found for this component")
	}

	res := &ApplyResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if next, changed := appliedContent(kind, c.Content, alt.Text); changed {
			if err := s.components.UpdateFields(inner, c.ID, map[string]interface{}{"content": next}); err != nil {
				return err
			}
			res.WasUpdated = true
		}
		last, err := s.history.Latest(inner, c.ID, kind)
		if err != nil {
			return err
		}
		if last == nil || selectionKey(last.AlternativeType) != selectionKey(alt.AlternativeType) {
			if err := s.history.Create(inner, &types.ComponentSelectionHistory{
				ComponentID:     c.ID,
				Kind:            kind,
				UserID:          ctxutil.UserID(ctx),
				AlternativeID:   alt.ID,
				AlternativeType: alt.AlternativeType,
				SelectedText:    alt.Text,
				SelectedAt:      time.Now().UTC(),
			}); err != nil {
				return err
			}
			res.WasRecorded = true
		}
		return nil
	})
	if err != nil {
		s.log.Error("Apply alternative failed", "component_id", c.ID, "kind", kind, "error", err)
		return nil, fmt.Errorf("apply alternative: %w", err)
	}
	if res.Component, err = s.components.GetByID(dbc, c.ID); err != nil {
		return nil, fmt.Errorf("reload component: %w", err)
	}
	res.Message = applyMessage(res.WasUpdated, res.WasRecorded)
	observability.Current().IncApply(string(kind), res.WasUpdated, res.WasRecorded)
	return res, nil
}

// appliedContent returns the content after applying text and whether it differs from current.
func appliedContent(kind domain.TransformKind, current, text string) (string, bool) {
	if kind != domain.TransformContinue {
		return text, current != text
	}
	if strings.HasSuffix(current, text) {
		return current, false
	}
	if last, _ := utf8.DecodeLastRuneInString(current); current == "" || unicode.IsSpace(last) {
		return current + text, true
	}
	return current + " " + text, true
}

// selectionKey is what consecutive history rows are compared on. Two selections with the same key in a
// row record only once.
func selectionKey(theme domain.AlternativeTheme) string {
	return string(theme)
}

func applyMessage(updated, recorded bool) string {
	switch {
	case updated && recorded:
		return MsgAppliedAndRecorded
	case updated:
		return MsgAppliedSameTheme
	case recorded:
		return MsgAlreadyAppliedNewly
	default:
		return MsgAlreadyApplied
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
