package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

// GenerationHandler serves the AI segment endpoints. Inner generation failures come back as 200 with
// success=false; only precondition failures are HTTP errors.
type GenerationHandler struct {
	log        *logger.Logger
	generation services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, generation services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:        log.With("handler", "GenerationHandler"),
		generation: generation,
	}
}

type scriptGenerationRequest struct {
	ScriptID uuid.UUID `json:"script_id"`
}

// POST /api/scene-segments/ai/generate-next
func (h *GenerationHandler) GenerateNext(c *gin.Context) {
	var req scriptGenerationRequest
	if !bindJSON(c, &req) || !requireUUID(c, req.ScriptID, "script_id") {
		return
	}
	res, err := h.generation.GenerateNext(c.Request.Context(), req.ScriptID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/scene-segments/ai/get-or-generate-first
func (h *GenerationHandler) GetOrGenerateFirst(c *gin.Context) {
	var req scriptGenerationRequest
	if !bindJSON(c, &req) || !requireUUID(c, req.ScriptID, "script_id") {
		return
	}
	res, err := h.generation.GetOrGenerateFirst(c.Request.Context(), req.ScriptID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
