package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type ScriptSyncHandler struct {
	log  *logger.Logger
	sync services.ScriptSyncService
}

func NewScriptSyncHandler(log *logger.Logger, sync services.ScriptSyncService) *ScriptSyncHandler {
	return &ScriptSyncHandler{
		log:  log.With("handler", "ScriptSyncHandler"),
		sync: sync,
	}
}

// PUT /api/scene-segments/:id/changes, where :id is the script.
func (h *ScriptSyncHandler) ApplyChanges(c *gin.Context) {
	scriptID, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	var req services.ScriptChangesRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.sync.ApplyChanges(c.Request.Context(), scriptID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
