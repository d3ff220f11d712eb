package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResetInterval string

const (
	ResetMonthly ResetInterval = "monthly"
	ResetAnnual  ResetInterval = "annual"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionPending   SubscriptionStatus = "pending"
)

type SubscriptionPlan struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"column:name;size:64;not null;uniqueIndex" json:"name"`
	DisplayName    string         `gorm:"column:display_name;size:128;not null" json:"display_name"`
	PriceCents     int64          `gorm:"column:price_cents;not null;default:0" json:"price_cents"`
	Currency       string         `gorm:"column:currency;size:8;not null;default:'USD'" json:"currency"`
	DurationDays   int            `gorm:"column:duration_days;not null" json:"duration_days"`
	FreeTrialCalls int            `gorm:"column:free_trial_calls;not null;default:0" json:"free_trial_calls"`
	ResetInterval  ResetInterval  `gorm:"column:reset_interval;size:16;not null;default:'monthly'" json:"reset_interval"`
	Features       datatypes.JSON `gorm:"column:features" json:"features,omitempty"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (SubscriptionPlan) TableName() string { return "subscription_plans" }

func (p *SubscriptionPlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type UserSubscription struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"plan_id"`
	Plan             *SubscriptionPlan  `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	Status           SubscriptionStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	StartAt          time.Time          `gorm:"column:start_at;not null" json:"start_at"`
	ExpiresAt        time.Time          `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CancelledAt      *time.Time         `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	PaymentReference *string            `gorm:"column:payment_reference;size:255" json:"payment_reference,omitempty"`
	CreatedAt        time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"not null" json:"updated_at"`
}

func (UserSubscription) TableName() string { return "user_subscriptions" }

func (s *UserSubscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the subscription grants access at t.
func (s UserSubscription) ActiveAt(t time.Time) bool {
	return s.Status == SubscriptionActive && s.ExpiresAt.After(t)
}
