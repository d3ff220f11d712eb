package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/billing"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	CreatePlan(dbc dbctx.Context, plan *types.SubscriptionPlan) error
	GetPlanByName(dbc dbctx.Context, name string) (*types.SubscriptionPlan, error)
	ListActivePlans(dbc dbctx.Context) ([]*types.SubscriptionPlan, error)
	Create(dbc dbctx.Context, row *types.UserSubscription) error
	// ActiveForUser returns the latest-expiring active subscription at now, with its plan loaded.
	ActiveForUser(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.UserSubscription, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) CreatePlan(dbc dbctx.Context, plan *types.SubscriptionPlan) error {
	if plan == nil {
		return nil
	}
	return dbc.DB(r.db).Create(plan).Error
}

func (r *subscriptionRepo) GetPlanByName(dbc dbctx.Context, name string) (*types.SubscriptionPlan, error) {
	var out []*types.SubscriptionPlan
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *subscriptionRepo) ListActivePlans(dbc dbctx.Context) ([]*types.SubscriptionPlan, error) {
	var out []*types.SubscriptionPlan
	if err := dbc.DB(r.db).Where("is_active = ?", true).Order("price_cents ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subscriptionRepo) Create(dbc dbctx.Context, row *types.UserSubscription) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *subscriptionRepo) ActiveForUser(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.UserSubscription, error) {
	var out []*types.UserSubscription
	if err := dbc.DB(r.db).
		Preload("Plan").
		Where("user_id = ? AND status = ? AND expires_at > ?", userID, domain.SubscriptionActive, now.UTC()).
		Order("expires_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
