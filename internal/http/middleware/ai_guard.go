package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

const upgradeURL = "/pricing/status"

type freeTierExceeded struct {
	Error          response.APIError `json:"error"`
	CallsRemaining int               `json:"calls_remaining"`
	UpgradeURL     string            `json:"upgrade_url"`
}

// AIGuard lets subscribers through and stops free-tier users once their calls are used up. It runs after
// RequireAuth.
type AIGuard struct {
	log   *logger.Logger
	usage services.UsageService
}

func NewAIGuard(log *logger.Logger, usage services.UsageService) *AIGuard {
	return &AIGuard{log: log.With("middleware", "AIGuard"), usage: usage}
}

func (g *AIGuard) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := ctxutil.UserID(ctx)

		subscribed, err := g.usage.HasActiveSubscription(ctx, userID)
		if err != nil {
			g.log.Error("Subscription check failed", "user_id", userID, "error", err)
			response.RespondAPIError(c, err)
			c.Abort()
			return
		}
		if subscribed {
			c.Next()
			return
		}
		remaining, err := g.usage.RemainingFreeCalls(ctx, userID)
		if err != nil {
			g.log.Error("Free tier check failed", "user_id", userID, "error", err)
			response.RespondAPIError(c, err)
			c.Abort()
			return
		}
		if remaining <= 0 {
			g.log.Info("Free tier exhausted", "user_id", userID, "path", c.FullPath())
			observability.Current().IncFreeTierRejected()
			c.AbortWithStatusJSON(http.StatusPaymentRequired, freeTierExceeded{
				Error: response.APIError{
					Code:    "free_tier_limit_exceeded",
					Message: "You've reached your free tier limit",
				},
				CallsRemaining: 0,
				UpgradeURL:     upgradeURL,
			})
			return
		}
		c.Next()
	}
}
