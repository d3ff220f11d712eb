package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type BeatSheetHandler struct {
	log        *logger.Logger
	beatSheets services.BeatSheetService
}

func NewBeatSheetHandler(log *logger.Logger, beatSheets services.BeatSheetService) *BeatSheetHandler {
	return &BeatSheetHandler{
		log:        log.With("handler", "BeatSheetHandler"),
		beatSheets: beatSheets,
	}
}

type createWithAIRequest struct {
	services.ScriptInput
	BeatSheetType domain.BeatSheetType `json:"beat_sheet_type"`
}

// GET /api/master-beat-sheets
func (h *BeatSheetHandler) ListMasterBeatSheets(c *gin.Context) {
	sheets, err := h.beatSheets.ListMasterBeatSheets(c.Request.Context())
	if err != nil {
		h.log.Error("List master beat sheets failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sheets)
}

// POST /api/scripts/with-ai
func (h *BeatSheetHandler) CreateWithAI(c *gin.Context) {
	var req createWithAIRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.beatSheets.CreateWithAI(c.Request.Context(), req.ScriptInput, req.BeatSheetType)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/scripts/:id/beatsheet
func (h *BeatSheetHandler) GetBeatSheet(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	view, err := h.beatSheets.GetBeatSheet(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PATCH /api/beats/:id
func (h *BeatSheetHandler) UpdateBeat(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_beat_id")
	if !ok {
		return
	}
	var req services.BeatPatch
	if !bindJSON(c, &req) {
		return
	}
	beat, err := h.beatSheets.UpdateBeat(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, beat)
}

// POST /api/test/beat-generation
func (h *BeatSheetHandler) TestGenerate(c *gin.Context) {
	var req services.TestBeatInput
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.beatSheets.TestGenerate(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sheet)
}

// POST /api/test/beat-generation/stream
//
// Errors raised before the first event are plain JSON responses; once streaming has started they arrive
// as an "error" event. A client disconnect cancels the request context and with it the upstream call.
func (h *BeatSheetHandler) StreamTestGenerate(c *gin.Context) {
	var req services.TestBeatInput
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	started := false
	err := h.beatSheets.StreamTestGenerate(ctx, req, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !started {
			startSSE(c)
			started = true
		}
		c.SSEvent(event, data)
		c.Writer.Flush()
		return nil
	})
	switch {
	case err == nil:
	case !started:
		response.RespondAPIError(c, err)
	case errors.Is(err, ctx.Err()):
		h.log.Debug("Beat stream client went away", "error", err)
	default:
		h.log.Warn("Beat stream ended with error", "error", err)
	}
}

func startSSE(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}
