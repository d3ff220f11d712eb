package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type SceneDescriptionHandler struct {
	log          *logger.Logger
	descriptions services.SceneDescriptionService
}

func NewSceneDescriptionHandler(log *logger.Logger, descriptions services.SceneDescriptionService) *SceneDescriptionHandler {
	return &SceneDescriptionHandler{
		log:          log.With("handler", "SceneDescriptionHandler"),
		descriptions: descriptions,
	}
}

// POST /api/scene-descriptions/beat
func (h *SceneDescriptionHandler) GenerateForBeat(c *gin.Context) {
	var req struct {
		BeatID uuid.UUID `json:"beat_id"`
	}
	if !bindJSON(c, &req) || !requireUUID(c, req.BeatID, "beat_id") {
		return
	}
	res, err := h.descriptions.GenerateForBeat(c.Request.Context(), req.BeatID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/scene-descriptions/beat/:id
func (h *SceneDescriptionHandler) ListForBeat(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_beat_id")
	if !ok {
		return
	}
	rows, err := h.descriptions.ListForBeat(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// PATCH /api/scene-descriptions/:id
func (h *SceneDescriptionHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_scene_description_id")
	if !ok {
		return
	}
	var req services.SceneDescriptionPatch
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.descriptions.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /api/scene-descriptions/:id
func (h *SceneDescriptionHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_scene_description_id")
	if !ok {
		return
	}
	if err := h.descriptions.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
