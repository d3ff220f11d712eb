package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type UsageConfig struct {
	FreeCallLimit int
	ResetInterval billing.ResetInterval
}

type PricingStatus struct {
	HasActiveSubscription bool                    `json:"has_active_subscription"`
	Subscription          *types.UserSubscription `json:"subscription,omitempty"`
	FreeCallLimit         int                     `json:"free_call_limit"`
	CallsUsed             int64                   `json:"calls_used"`
	CallsRemaining        int                     `json:"calls_remaining"`
	ResetInterval         billing.ResetInterval   `json:"reset_interval"`
	WindowStart           *time.Time              `json:"window_start,omitempty"`
}

type UsageSummary struct {
	Days   int                          `json:"days"`
	Since  time.Time                    `json:"since"`
	Total  int64                        `json:"total"`
	ByType map[billing.AICallType]int64 `json:"by_type"`
}

type UsageService interface {
	// LogCall records one successful AI call. Failures are logged and returned; callers do not fail the
	// user's request on them.
	LogCall(dbc dbctx.Context, userID uuid.UUID, callType billing.AICallType, scriptID *uuid.UUID, metadata map[string]any) error
	RemainingFreeCalls(ctx context.Context, userID uuid.UUID) (int, error)
	HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error)
	Status(ctx context.Context, userID uuid.UUID) (*PricingStatus, error)
	Summary(ctx context.Context, userID uuid.UUID, days int) (*UsageSummary, error)
	Plans(ctx context.Context) ([]*types.SubscriptionPlan, error)
}

type usageService struct {
	log           *logger.Logger
	usageRepo     repos.UsageRepo
	subscriptions repos.SubscriptionRepo
	cfg           UsageConfig
	now           func() time.Time
}

func NewUsageService(log *logger.Logger, usageRepo repos.UsageRepo, subscriptions repos.SubscriptionRepo, cfg UsageConfig) UsageService {
	if cfg.ResetInterval == "" {
		cfg.ResetInterval = billing.ResetMonthly
	}
	return &usageService{
		log:           log.With("service", "UsageService"),
		usageRepo:     usageRepo,
		subscriptions: subscriptions,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *usageService) LogCall(dbc dbctx.Context, userID uuid.UUID, callType billing.AICallType, scriptID *uuid.UUID, metadata map[string]any) error {
	row := &types.AIUsageLog{
		UserID:    userID,
		ScriptID:  scriptID,
		CallType:  callType,
		Timestamp: s.now(),
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err == nil {
			row.UsageMetadata = datatypes.JSON(raw)
		}
	}
	if err := s.usageRepo.Create(dbc, row); err != nil {
		s.log.Warn("Failed to log AI usage", "call_type", callType, "user_id", userID, "error", err)
		return fmt.Errorf("log usage: %w", err)
	}
	return nil
}

// windowStart is the first instant counted against the free tier; zero means all time.
func (s *usageService) windowStart() time.Time {
	if s.cfg.ResetInterval == billing.ResetAnnual {
		return time.Time{}
	}
	now := s.now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *usageService) RemainingFreeCalls(ctx context.Context, userID uuid.UUID) (int, error) {
	used, err := s.usageRepo.CountSince(dbctx.Context{Ctx: ctx}, userID, s.windowStart())
	if err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	left := s.cfg.FreeCallLimit - int(used)
	if left < 0 {
		left = 0
	}
	return left, nil
}

func (s *usageService) HasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.subscriptions.ActiveForUser(dbctx.Context{Ctx: ctx}, userID, s.now())
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	return sub != nil, nil
}

func (s *usageService) Status(ctx context.Context, userID uuid.UUID) (*PricingStatus, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := s.subscriptions.ActiveForUser(dbc, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	start := s.windowStart()
	used, err := s.usageRepo.CountSince(dbc, userID, start)
	if err != nil {
		return nil, fmt.Errorf("count usage: %w", err)
	}
	left := s.cfg.FreeCallLimit - int(used)
	if left < 0 {
		left = 0
	}
	out := &PricingStatus{
		HasActiveSubscription: sub != nil,
		Subscription:          sub,
		FreeCallLimit:         s.cfg.FreeCallLimit,
		CallsUsed:             used,
		CallsRemaining:        left,
		ResetInterval:         s.cfg.ResetInterval,
	}
	if !start.IsZero() {
		out.WindowStart = &start
	}
	return out, nil
}

func (s *usageService) Summary(ctx context.Context, userID uuid.UUID, days int) (*UsageSummary, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)
	byType, err := s.usageRepo.CountByTypeSince(dbctx.Context{Ctx: ctx}, userID, since)
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	var total int64
	for _, n := range byType {
		total += n
	}
	return &UsageSummary{Days: days, Since: since, Total: total, ByType: byType}, nil
}

func (s *usageService) Plans(ctx context.Context) ([]*types.SubscriptionPlan, error) {
	plans, err := s.subscriptions.ListActivePlans(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// usageMetadata is stored with each usage row; token counts are estimates.
func usageMetadata(model, prompt, output string, extra map[string]any) map[string]any {
	m := map[string]any{
		"model":         model,
		"prompt_tokens": llm.EstimateTokens(model, prompt),
		"output_tokens": llm.EstimateTokens(model, output),
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// transformCallType maps a transform kind onto its usage call type.
func transformCallType(kind domain.TransformKind) billing.AICallType {
	switch kind {
	case domain.TransformShorten:
		return billing.CallShortening
	case domain.TransformRewrite:
		return billing.CallRewriting
	case domain.TransformExpand:
		return billing.CallExpansion
	default:
		return billing.CallContinuation
	}
}
