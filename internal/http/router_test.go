package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/screenplay-backend/internal/http/handlers"
	httpMW "github.com/yungbote/screenplay-backend/internal/http/middleware"
	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/llm/llmtest"
	"github.com/yungbote/screenplay-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	engine *gin.Engine
	auth   services.AuthService
}

func newTestServer(t *testing.T, freeCalls int, testEndpoints bool) *testServer {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := repos.NewSet(db, log)
	ai := llmtest.New()

	auth := services.NewAuthService(log, "router-test-secret", "")
	usage := services.NewUsageService(log, r.Usage, r.Subscription, services.UsageConfig{FreeCallLimit: freeCalls})
	resolver := services.NewNextTargetResolver(log, r.Target)
	descriptions := services.NewSceneDescriptionService(db, log, ai, usage, resolver, r)

	engine := NewRouter(RouterConfig{
		Log:                     log,
		AuthMiddleware:          httpMW.NewAuthMiddleware(log, auth),
		AIGuard:                 httpMW.NewAIGuard(log, usage),
		EnableTestEndpoints:     testEndpoints,
		HealthHandler:           httpH.NewHealthHandler(db),
		ScriptHandler:           httpH.NewScriptHandler(log, services.NewScriptService(db, log, r)),
		BeatSheetHandler:        httpH.NewBeatSheetHandler(log, services.NewBeatSheetService(db, log, ai, usage, r)),
		SceneDescriptionHandler: httpH.NewSceneDescriptionHandler(log, descriptions),
		SegmentHandler:          httpH.NewSegmentHandler(log, services.NewSegmentService(db, log, r)),
		GenerationHandler: httpH.NewGenerationHandler(log, services.NewGenerationService(
			db, log, ai, usage, resolver, descriptions, keylock.NewLocal(), 0, r,
		)),
		TransformHandler:  httpH.NewTransformHandler(log, services.NewTransformService(db, log, ai, usage, r)),
		ScriptSyncHandler: httpH.NewScriptSyncHandler(log, services.NewScriptSyncService(db, log, r)),
		UsageHandler:      httpH.NewUsageHandler(log, usage),
	})
	return &testServer{engine: engine, auth: auth}
}

func (s *testServer) token(t *testing.T, user uuid.UUID) string {
	t.Helper()
	tok, err := s.auth.IssueToken(user, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthcheckIsPublic(t *testing.T) {
	s := newTestServer(t, 10, false)
	w := s.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, 10, false)
	w := s.do(t, http.MethodGet, "/api/scripts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/pricing/plans", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "plans are public")
}

func TestScriptLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, 10, false)
	owner := s.token(t, uuid.New())

	w := s.do(t, http.MethodPost, "/api/scripts", owner, map[string]any{
		"title": "Night Shift", "genre": "thriller", "story": "A guard hears the exhibits whisper.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	w = s.do(t, http.MethodGet, "/api/scripts/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/scripts", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Night Shift")

	stranger := s.token(t, uuid.New())
	w = s.do(t, http.MethodGet, "/api/scripts/"+id, stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "other users' scripts are invisible")

	w = s.do(t, http.MethodPut, "/api/scripts/"+id, owner, map[string]any{"title": "Day Shift"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Day Shift", decode[map[string]any](t, w)["title"])

	w = s.do(t, http.MethodDelete, "/api/scripts/"+id, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, "/api/scripts/"+id, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedPathIDIsBadRequest(t *testing.T) {
	s := newTestServer(t, 10, false)
	w := s.do(t, http.MethodGet, "/api/scripts/not-a-uuid", s.token(t, uuid.New()), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSegmentCreateAndExport(t *testing.T) {
	s := newTestServer(t, 10, false)
	owner := s.token(t, uuid.New())

	w := s.do(t, http.MethodPost, "/api/scripts", owner, map[string]any{
		"title": "Export", "genre": "drama", "story": "Two people talk in an office.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	scriptID := decode[map[string]any](t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/scene-segments", owner, map[string]any{
		"script_id": scriptID,
		"components": []map[string]any{
			{"component_type": "HEADING", "position": 1, "content": "INT. OFFICE - DAY"},
			{"component_type": "ACTION", "position": 2, "content": "Papers everywhere."},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/scene-segments/script/"+scriptID+"/export?format=text", owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "INT. OFFICE - DAY")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".fountain")
}

func TestAIRoutesRefuseExhaustedFreeTier(t *testing.T) {
	s := newTestServer(t, 0, false)
	w := s.do(t, http.MethodPost, "/api/scene-segments/ai/generate-next", s.token(t, uuid.New()), map[string]any{
		"script_id": uuid.NewString(),
	})
	require.Equal(t, http.StatusPaymentRequired, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, body["calls_remaining"])
}

func TestTestEndpointsAreOptIn(t *testing.T) {
	off := newTestServer(t, 10, false)
	w := off.do(t, http.MethodPost, "/api/test/beat-generation", off.token(t, uuid.New()), map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404 page not found", w.Body.String())

	// With no template seeded the handler answers, but not with gin's unmatched-route body.
	on := newTestServer(t, 10, true)
	w = on.do(t, http.MethodPost, "/api/test/beat-generation", on.token(t, uuid.New()), map[string]any{})
	assert.NotEqual(t, "404 page not found", w.Body.String())
}
