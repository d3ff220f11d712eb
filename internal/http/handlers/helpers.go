package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/http/response"
)

// pathUUID parses a uuid route param, writing a 400 with code when it is malformed.
func pathUUID(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, code, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// queryInt reads a non-negative integer query param, falling back to def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", fmt.Errorf("invalid %s", name))
		return nil, false
	}
	return &id, true
}

func requireUUID(c *gin.Context, id uuid.UUID, field string) bool {
	if id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New(field+" is required"))
		return false
	}
	return true
}
