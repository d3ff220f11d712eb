package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type ResolutionStatus int

const (
	TargetFound ResolutionStatus = iota
	// NoDescriptions means no live scene description exists for any beat of the script yet.
	NoDescriptions
	// AllGenerated means every live scene description already has a live segment.
	AllGenerated
)

type Resolution struct {
	Status ResolutionStatus
	Target *types.SceneDescription
}

// NextTargetResolver walks a script in (beat.position, item.position) order over live rows only.
type NextTargetResolver interface {
	NextBeatWithoutSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (*types.Beat, error)
	NextSceneDescriptionWithoutSegment(dbc dbctx.Context, scriptID uuid.UUID) (Resolution, error)
	PreviousSceneHeadings(dbc dbctx.Context, scriptID uuid.UUID, beatPosition, scenePosition int) ([]string, error)
}

type nextTargetResolver struct {
	log     *logger.Logger
	targets repos.TargetRepo
}

func NewNextTargetResolver(log *logger.Logger, targets repos.TargetRepo) NextTargetResolver {
	return &nextTargetResolver{log: log.With("service", "NextTargetResolver"), targets: targets}
}

func (r *nextTargetResolver) NextBeatWithoutSceneDescriptions(dbc dbctx.Context, scriptID uuid.UUID) (*types.Beat, error) {
	b, err := r.targets.FirstBeatWithoutSceneDescriptions(dbc, scriptID)
	if err != nil {
		return nil, fmt.Errorf("resolve beat without scene descriptions: %w", err)
	}
	return b, nil
}

func (r *nextTargetResolver) NextSceneDescriptionWithoutSegment(dbc dbctx.Context, scriptID uuid.UUID) (Resolution, error) {
	n, err := r.targets.CountSceneDescriptions(dbc, scriptID)
	if err != nil {
		return Resolution{}, fmt.Errorf("count scene descriptions: %w", err)
	}
	if n == 0 {
		return Resolution{Status: NoDescriptions}, nil
	}
	sd, err := r.targets.FirstSceneDescriptionWithoutSegment(dbc, scriptID)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve scene description without segment: %w", err)
	}
	if sd == nil {
		return Resolution{Status: AllGenerated}, nil
	}
	return Resolution{Status: TargetFound, Target: sd}, nil
}

func (r *nextTargetResolver) PreviousSceneHeadings(dbc dbctx.Context, scriptID uuid.UUID, beatPosition, scenePosition int) ([]string, error) {
	h, err := r.targets.HeadingsBefore(dbc, scriptID, beatPosition, scenePosition)
	if err != nil {
		return nil, fmt.Errorf("load previous scene headings: %w", err)
	}
	return h, nil
}
