package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/billing"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type UsageRepo interface {
	Create(dbc dbctx.Context, row *types.AIUsageLog) error
	// CountSince counts calls by a user at or after since. A zero since counts all time.
	CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error)
	CountByTypeSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (map[domain.AICallType]int64, error)
}

type usageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRepo(db *gorm.DB, baseLog *logger.Logger) UsageRepo {
	return &usageRepo{db: db, log: baseLog.With("repo", "UsageRepo")}
}

func (r *usageRepo) Create(dbc dbctx.Context, row *types.AIUsageLog) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *usageRepo) scope(t *gorm.DB, userID uuid.UUID, since time.Time) *gorm.DB {
	q := t.Model(&types.AIUsageLog{}).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since.UTC())
	}
	return q
}

func (r *usageRepo) CountSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.scope(dbc.DB(r.db), userID, since).Count(&n).Error
	return n, err
}

func (r *usageRepo) CountByTypeSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) (map[domain.AICallType]int64, error) {
	var rows []struct {
		CallType domain.AICallType
		N        int64
	}
	if err := r.scope(dbc.DB(r.db), userID, since).
		Select("call_type, COUNT(*) AS n").
		Group("call_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.AICallType]int64, len(rows))
	for _, row := range rows {
		out[row.CallType] = row.N
	}
	return out, nil
}
