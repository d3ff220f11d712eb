package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type ScriptHandler struct {
	log     *logger.Logger
	scripts services.ScriptService
}

func NewScriptHandler(log *logger.Logger, scripts services.ScriptService) *ScriptHandler {
	return &ScriptHandler{
		log:     log.With("handler", "ScriptHandler"),
		scripts: scripts,
	}
}

// POST /api/scripts
func (h *ScriptHandler) Create(c *gin.Context) {
	var req services.ScriptInput
	if !bindJSON(c, &req) {
		return
	}
	script, err := h.scripts.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, script)
}

// GET /api/scripts?skip=&limit=&genre=
func (h *ScriptHandler) List(c *gin.Context) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		return
	}
	scripts, err := h.scripts.List(c.Request.Context(), repos.ScriptListFilter{
		Genre: strings.TrimSpace(c.Query("genre")),
		Skip:  skip,
		Limit: limit,
	})
	if err != nil {
		h.log.Error("List scripts failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, scripts)
}

// GET /api/scripts/:id
func (h *ScriptHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	script, err := h.scripts.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, script)
}

// PUT /api/scripts/:id
func (h *ScriptHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	var req services.ScriptPatch
	if !bindJSON(c, &req) {
		return
	}
	script, err := h.scripts.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, script)
}

// DELETE /api/scripts/:id
func (h *ScriptHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	if err := h.scripts.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}
