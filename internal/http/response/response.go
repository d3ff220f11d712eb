// Package response renders handler results. Every error body has the shape {"error":{"message","code"}}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func envelope(code, msg string) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, envelope(code, msg))
}

// RespondAPIError renders err with the status and code it carries. Errors without one become a 500 with
// a generic message so storage details do not leak; the cause is attached to the gin context for the
// request log.
func RespondAPIError(c *gin.Context, err error) {
	ae, ok := apierr.As(err)
	if !ok || ae.Status == 0 {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, envelope("internal_error", "internal server error"))
		return
	}
	code := ae.Code
	if code == "" {
		code = http.StatusText(ae.Status)
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, ae.Status, code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
