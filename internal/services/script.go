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
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type ScriptInput struct {
	Title          string                `json:"title"`
	Subtitle       *string               `json:"subtitle,omitempty"`
	Genre          string                `json:"genre"`
	Story          string                `json:"story"`
	CreationMethod domain.CreationMethod `json:"creation_method,omitempty"`
	FileURL        *string               `json:"file_url,omitempty"`
}

func (in *ScriptInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Story = strings.TrimSpace(in.Story)
	if in.Title == "" {
		return apierr.BadRequest("invalid_script", "title is required")
	}
	if in.Genre == "" {
		return apierr.BadRequest("invalid_script", "genre is required")
	}
	if in.Story == "" {
		return apierr.BadRequest("invalid_script", "story is required")
	}
	if in.CreationMethod == "" {
		in.CreationMethod = domain.CreationFromScratch
	}
	if !in.CreationMethod.Valid() {
		return apierr.BadRequest("invalid_script", fmt.Sprintf("invalid creation_method %q", in.CreationMethod))
	}
	return nil
}

func (in ScriptInput) row(userID uuid.UUID) *types.Script {
	return &types.Script{
		UserID:         userID,
		Title:          in.Title,
		Subtitle:       in.Subtitle,
		Genre:          in.Genre,
		Story:          in.Story,
		CreationMethod: in.CreationMethod,
		IsFileUploaded: in.FileURL != nil && strings.TrimSpace(*in.FileURL) != "",
		FileURL:        in.FileURL,
	}
}

type ScriptPatch struct {
	Title          *string `json:"title,omitempty"`
	Subtitle       *string `json:"subtitle,omitempty"`
	Genre          *string `json:"genre,omitempty"`
	Story          *string `json:"story,omitempty"`
	ScriptProgress *int    `json:"script_progress,omitempty"`
	FileURL        *string `json:"file_url,omitempty"`
}

type ScriptService interface {
	Create(ctx context.Context, in ScriptInput) (*types.Script, error)
	List(ctx context.Context, filter repos.ScriptListFilter) ([]*types.Script, error)
	Get(ctx context.Context, scriptID uuid.UUID) (*types.Script, error)
	Update(ctx context.Context, scriptID uuid.UUID, patch ScriptPatch) (*types.Script, error)
	Delete(ctx context.Context, scriptID uuid.UUID) error
}

type scriptService struct {
	db         *gorm.DB
	log        *logger.Logger
	scriptRepo repos.ScriptRepo
	own        ownership
}

func NewScriptService(db *gorm.DB, log *logger.Logger, r repos.Set) ScriptService {
	return &scriptService{
		db:         db,
		log:        log.With("service", "ScriptService"),
		scriptRepo: r.Script,
		own:        newOwnership(r),
	}
}

func (s *scriptService) Create(ctx context.Context, in ScriptInput) (*types.Script, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	created, err := s.scriptRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Script{in.row(uid)})
	if err != nil {
		s.log.Error("Create script failed", "error", err)
		return nil, fmt.Errorf("create script: %w", err)
	}
	return created[0], nil
}

func (s *scriptService) List(ctx context.Context, filter repos.ScriptListFilter) ([]*types.Script, error) {
	uid, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 100
	}
	out, err := s.scriptRepo.ListByUser(dbctx.Context{Ctx: ctx}, uid, filter)
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	return out, nil
}

func (s *scriptService) Get(ctx context.Context, scriptID uuid.UUID) (*types.Script, error) {
	return s.own.script(dbctx.Context{Ctx: ctx}, scriptID)
}

func (s *scriptService) Update(ctx context.Context, scriptID uuid.UUID, patch ScriptPatch) (*types.Script, error) {
	dbc := dbctx.Context{Ctx: ctx}
	script, err := s.own.script(dbc, scriptID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	setString := func(col string, v *string, required bool) error {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if required && t == "" {
			return apierr.BadRequest("invalid_script", col+" cannot be empty")
		}
		updates[col] = t
		return nil
	}
	if err := setString("title", patch.Title, true); err != nil {
		return nil, err
	}
	if err := setString("genre", patch.Genre, true); err != nil {
		return nil, err
	}
	if err := setString("story", patch.Story, true); err != nil {
		return nil, err
	}
	if patch.Subtitle != nil {
		updates["subtitle"] = patch.Subtitle
	}
	if patch.FileURL != nil {
		updates["file_url"] = patch.FileURL
		updates["is_file_uploaded"] = strings.TrimSpace(*patch.FileURL) != ""
	}
	if patch.ScriptProgress != nil {
		p := *patch.ScriptProgress
		if p < 0 || p > 100 {
			return nil, apierr.BadRequest("invalid_script", "script_progress must be between 0 and 100")
		}
		updates["script_progress"] = p
	}
	if len(updates) == 0 {
		return script, nil
	}
	if err := s.scriptRepo.UpdateFields(dbc, script.ID, updates); err != nil {
		return nil, fmt.Errorf("update script: %w", err)
	}
	return s.scriptRepo.GetByID(dbc, script.ID)
}

func (s *scriptService) Delete(ctx context.Context, scriptID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		script, err := s.own.script(dbc, scriptID)
		if err != nil {
			return err
		}
		if err := s.scriptRepo.FullDeleteByIDs(dbc, []uuid.UUID{script.ID}); err != nil {
			s.log.Error("Delete script failed", "script_id", script.ID, "error", err)
			return fmt.Errorf("delete script: %w", err)
		}
		return nil
	})
}
