package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
)

var (
	errUnauthorized       = apierr.Unauthorized("unauthorized", "Not authenticated")
	errScriptNotFound     = apierr.NotFound("script_not_found", "Script not found")
	errBeatNotFound       = apierr.NotFound("beat_not_found", "Beat not found")
	errSceneNotFound      = apierr.NotFound("scene_description_not_found", "Scene description not found")
	errSegmentNotFound    = apierr.NotFound("scene_segment_not_found", "Scene segment not found")
	errComponentNotFound  = apierr.NotFound("component_not_found", "Component not found")
	errTemplateNotFound   = apierr.NotFound("beat_template_not_found", "Beat template configuration not found")
	errMasterNotFound     = apierr.NotFound("master_beat_sheet_not_found", "Master beat sheet not found")
	errNotAIScript        = apierr.BadRequest("not_ai_script", "Script was not created with AI support")
	errGenerationInFlight = apierr.Conflict("generation_in_progress", "A generation is already running for this script")
)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	uid := ctxutil.UserID(ctx)
	if uid == uuid.Nil {
		return uuid.Nil, errUnauthorized
	}
	return uid, nil
}

// ownership walks a row up to its script and checks the caller owns it. Missing and foreign rows look the
// same to the caller.
type ownership struct {
	scripts      repos.ScriptRepo
	beats        repos.BeatRepo
	descriptions repos.SceneDescriptionRepo
	segments     repos.SceneSegmentRepo
	components   repos.ComponentRepo
}

func newOwnership(r repos.Set) ownership {
	return ownership{
		scripts:      r.Script,
		beats:        r.Beat,
		descriptions: r.SceneDescription,
		segments:     r.SceneSegment,
		components:   r.Component,
	}
}

func (o ownership) script(dbc dbctx.Context, scriptID uuid.UUID) (*types.Script, error) {
	uid, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	s, err := o.scripts.GetByID(dbc, scriptID)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	if s == nil || s.UserID != uid {
		return nil, errScriptNotFound
	}
	return s, nil
}

func (o ownership) beat(dbc dbctx.Context, beatID uuid.UUID) (*types.Beat, *types.Script, error) {
	b, err := o.beats.GetByID(dbc, beatID)
	if err != nil {
		return nil, nil, fmt.Errorf("load beat: %w", err)
	}
	if b == nil {
		return nil, nil, errBeatNotFound
	}
	s, err := o.script(dbc, b.ScriptID)
	if err != nil {
		if err == errScriptNotFound {
			return nil, nil, errBeatNotFound
		}
		return nil, nil, err
	}
	return b, s, nil
}

func (o ownership) sceneDescription(dbc dbctx.Context, id uuid.UUID) (*types.SceneDescription, *types.Beat, *types.Script, error) {
	sd, err := o.descriptions.GetByID(dbc, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load scene description: %w", err)
	}
	if sd == nil {
		return nil, nil, nil, errSceneNotFound
	}
	b, s, err := o.beat(dbc, sd.BeatID)
	if err != nil {
		if err == errBeatNotFound {
			return nil, nil, nil, errSceneNotFound
		}
		return nil, nil, nil, err
	}
	return sd, b, s, nil
}

func (o ownership) segment(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegment, *types.Script, error) {
	seg, err := o.segments.GetByID(dbc, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load scene segment: %w", err)
	}
	if seg == nil {
		return nil, nil, errSegmentNotFound
	}
	s, err := o.script(dbc, seg.ScriptID)
	if err != nil {
		if err == errScriptNotFound {
			return nil, nil, errSegmentNotFound
		}
		return nil, nil, err
	}
	return seg, s, nil
}

func (o ownership) component(dbc dbctx.Context, id uuid.UUID) (*types.SceneSegmentComponent, *types.SceneSegment, *types.Script, error) {
	c, err := o.components.GetByID(dbc, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load component: %w", err)
	}
	if c == nil {
		return nil, nil, nil, errComponentNotFound
	}
	seg, s, err := o.segment(dbc, c.SceneSegmentID)
	if err != nil {
		if err == errSegmentNotFound {
			return nil, nil, nil, errComponentNotFound
		}
		return nil, nil, nil, err
	}
	return c, seg, s, nil
}
