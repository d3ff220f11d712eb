package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type SegmentHandler struct {
	log      *logger.Logger
	segments services.SegmentService
}

func NewSegmentHandler(log *logger.Logger, segments services.SegmentService) *SegmentHandler {
	return &SegmentHandler{
		log:      log.With("handler", "SegmentHandler"),
		segments: segments,
	}
}

// POST /api/scene-segments
func (h *SegmentHandler) Create(c *gin.Context) {
	var req services.SegmentInput
	if !bindJSON(c, &req) || !requireUUID(c, req.ScriptID, "script_id") {
		return
	}
	seg, err := h.segments.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, seg)
}

// GET /api/scene-segments/:id
func (h *SegmentHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	seg, err := h.segments.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, seg)
}

// PATCH /api/scene-segments/:id
func (h *SegmentHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	var req services.SegmentPatch
	if !bindJSON(c, &req) {
		return
	}
	seg, err := h.segments.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, seg)
}

// DELETE /api/scene-segments/:id
func (h *SegmentHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	if err := h.segments.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/scene-segments/reorder
func (h *SegmentHandler) Reorder(c *gin.Context) {
	var req struct {
		SegmentID        uuid.UUID `json:"segment_id"`
		NewSegmentNumber float64   `json:"new_segment_number"`
	}
	if !bindJSON(c, &req) || !requireUUID(c, req.SegmentID, "segment_id") {
		return
	}
	seg, err := h.segments.Reorder(c.Request.Context(), req.SegmentID, req.NewSegmentNumber)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, seg)
}

// POST /api/scene-segments/batch
func (h *SegmentHandler) BatchCreate(c *gin.Context) {
	var req services.BatchSegmentsInput
	if !bindJSON(c, &req) || !requireUUID(c, req.ScriptID, "script_id") {
		return
	}
	segs, err := h.segments.BatchCreate(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, segs)
}

// GET /api/scene-segments/script/:id?skip=&limit=&beat_id=&scene_description_id=
func (h *SegmentHandler) ListForScript(c *gin.Context) {
	scriptID, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	beatID, ok := queryUUID(c, "beat_id")
	if !ok {
		return
	}
	sceneID, ok := queryUUID(c, "scene_description_id")
	if !ok {
		return
	}
	list, err := h.segments.ListForScript(c.Request.Context(), scriptID, repos.SegmentListFilter{
		BeatID:             beatID,
		SceneDescriptionID: sceneID,
		Skip:               skip,
		Limit:              limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, list)
}

// GET /api/scene-segments/script/:id/next-segment-number
func (h *SegmentHandler) NextSegmentNumber(c *gin.Context) {
	scriptID, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	n, err := h.segments.NextSegmentNumber(c.Request.Context(), scriptID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, n)
}

// GET /api/scene-segments/script/:id/export
//
// Returns the fountain text as a JSON string, or as a text/plain download with ?format=text.
func (h *SegmentHandler) Export(c *gin.Context) {
	scriptID, ok := pathUUID(c, "id", "invalid_script_id")
	if !ok {
		return
	}
	text, err := h.segments.ExportFountain(c.Request.Context(), scriptID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.Header("Content-Disposition", `attachment; filename="`+scriptID.String()+`.fountain"`)
		c.String(http.StatusOK, text)
		return
	}
	response.RespondOK(c, text)
}

// POST /api/scene-segments/from-text
func (h *SegmentHandler) CreateFromText(c *gin.Context) {
	var req services.FromTextInput
	if !bindJSON(c, &req) || !requireUUID(c, req.ScriptID, "script_id") {
		return
	}
	seg, err := h.segments.CreateFromText(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, seg)
}

// POST /api/scene-segments/:id/components
func (h *SegmentHandler) AddComponent(c *gin.Context) {
	segmentID, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	var req component.Input
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.segments.AddComponent(c.Request.Context(), segmentID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// POST /api/scene-segments/:id/components/batch
func (h *SegmentHandler) BatchUpdateComponents(c *gin.Context) {
	segmentID, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	var req []services.ComponentUpsert
	if !bindJSON(c, &req) {
		return
	}
	h.batchUpdate(c, segmentID, req)
}

// POST /api/scene-segments/:id/autosave
func (h *SegmentHandler) Autosave(c *gin.Context) {
	segmentID, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	var req struct {
		Components []services.ComponentUpsert `json:"components"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h.batchUpdate(c, segmentID, req.Components)
}

func (h *SegmentHandler) batchUpdate(c *gin.Context, segmentID uuid.UUID, in []services.ComponentUpsert) {
	rows, err := h.segments.BatchUpdateComponents(c.Request.Context(), segmentID, in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/scene-segments/:id/next-component-position
func (h *SegmentHandler) NextComponentPosition(c *gin.Context) {
	segmentID, ok := pathUUID(c, "id", "invalid_segment_id")
	if !ok {
		return
	}
	pos, err := h.segments.NextComponentPosition(c.Request.Context(), segmentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, pos)
}

// PATCH /api/scene-segments/components/:id
func (h *SegmentHandler) UpdateComponent(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_component_id")
	if !ok {
		return
	}
	var req services.ComponentPatch
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.segments.UpdateComponent(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /api/scene-segments/components/:id
func (h *SegmentHandler) DeleteComponent(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_component_id")
	if !ok {
		return
	}
	if err := h.segments.DeleteComponent(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/scene-segments/components/reorder
func (h *SegmentHandler) ReorderComponent(c *gin.Context) {
	var req services.ComponentReorder
	if !bindJSON(c, &req) || !requireUUID(c, req.ComponentID, "component_id") {
		return
	}
	row, err := h.segments.ReorderComponent(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /api/scene-segments/components/:id/auto-format
func (h *SegmentHandler) AutoFormat(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_component_id")
	if !ok {
		return
	}
	row, err := h.segments.AutoFormat(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, row)
}
