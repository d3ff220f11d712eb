package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type UsageHandler struct {
	log   *logger.Logger
	usage services.UsageService
}

func NewUsageHandler(log *logger.Logger, usage services.UsageService) *UsageHandler {
	return &UsageHandler{
		log:   log.With("handler", "UsageHandler"),
		usage: usage,
	}
}

// GET /api/usage/summary?days=30
func (h *UsageHandler) Summary(c *gin.Context) {
	days, ok := queryInt(c, "days", 30)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sum, err := h.usage.Summary(ctx, ctxutil.UserID(ctx), days)
	if err != nil {
		h.log.Error("Usage summary failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sum)
}

// GET /api/pricing/status
func (h *UsageHandler) PricingStatus(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.usage.Status(ctx, ctxutil.UserID(ctx))
	if err != nil {
		h.log.Error("Pricing status failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// GET /api/pricing/plans
func (h *UsageHandler) Plans(c *gin.Context) {
	plans, err := h.usage.Plans(c.Request.Context())
	if err != nil {
		h.log.Error("List plans failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, plans)
}
