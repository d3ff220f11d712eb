package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/http/response"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
	"github.com/yungbote/screenplay-backend/internal/services"
)

type TransformHandler struct {
	log        *logger.Logger
	transforms services.TransformService
}

func NewTransformHandler(log *logger.Logger, transforms services.TransformService) *TransformHandler {
	return &TransformHandler{
		log:        log.With("handler", "TransformHandler"),
		transforms: transforms,
	}
}

// applyRequest accepts the per-kind field names older clients send alongside the unified one.
type applyRequest struct {
	AlternativeText  string `json:"alternative_text"`
	ShortenedText    string `json:"shortened_text"`
	RewrittenText    string `json:"rewritten_text"`
	ExpandedText     string `json:"expanded_text"`
	ContinuationText string `json:"continuation_text"`
}

func (r applyRequest) text(kind domain.TransformKind) string {
	var legacy string
	switch kind {
	case domain.TransformShorten:
		legacy = r.ShortenedText
	case domain.TransformRewrite:
		legacy = r.RewrittenText
	case domain.TransformExpand:
		legacy = r.ExpandedText
	case domain.TransformContinue:
		legacy = r.ContinuationText
	}
	if strings.TrimSpace(legacy) != "" {
		return legacy
	}
	return r.AlternativeText
}

// Transform returns the handler for POST /api/scene-segments/components/:id/{shorten,rewrite,expand,continue}.
func (h *TransformHandler) Transform(kind domain.TransformKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id", "invalid_component_id")
		if !ok {
			return
		}
		res, err := h.transforms.Transform(c.Request.Context(), id, kind)
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		response.RespondOK(c, res)
	}
}

// Apply returns the handler for the per-kind apply endpoints (apply-shortened, apply-rewrite, ...).
func (h *TransformHandler) Apply(kind domain.TransformKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id", "invalid_component_id")
		if !ok {
			return
		}
		var req applyRequest
		if !bindJSON(c, &req) {
			return
		}
		h.apply(c, id, kind, req.text(kind))
	}
}

// POST /api/scene-segments/components/:id/apply-transform
func (h *TransformHandler) ApplyTransform(c *gin.Context) {
	id, ok := pathUUID(c, "id", "invalid_component_id")
	if !ok {
		return
	}
	var req struct {
		TransformType   domain.TransformKind `json:"transform_type"`
		AlternativeText string               `json:"alternative_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h.apply(c, id, req.TransformType, req.AlternativeText)
}

func (h *TransformHandler) apply(c *gin.Context, id uuid.UUID, kind domain.TransformKind, text string) {
	res, err := h.transforms.Apply(c.Request.Context(), id, kind, text)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
