package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
)

func TestRespondAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apierr.NotFound("script_not_found", "Script not found"), http.StatusNotFound, "script_not_found", "Script not found"},
		{"wrapped", fmt.Errorf("load: %w", apierr.Conflict("duplicate_beat_title", "taken")), http.StatusConflict, "duplicate_beat_title", "taken"},
		{"plain", errors.New("pq: connection reset"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.message {
				t.Fatalf("envelope: got=%+v", env.Error)
			}
		})
	}
}

func TestRespondAPIErrorRecordsServerFaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, apierr.BadGateway("llm_unavailable", errors.New("upstream timeout")))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("expected the cause on the context, got %d errors", len(c.Errors))
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	RespondAPIError(c, apierr.NotFound("script_not_found", "Script not found"))
	if len(c.Errors) != 0 {
		t.Fatalf("client errors are not recorded, got %d", len(c.Errors))
	}
}
