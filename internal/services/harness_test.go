package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	"github.com/yungbote/screenplay-backend/internal/platform/ctxutil"
	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/llm/llmtest"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// harness wires every service against one sqlite database and a scripted LLM. Fixtures are seeded on db
// directly; the database has a single connection, so nothing may hold a transaction open across a call.
type harness struct {
	ctx  context.Context
	db   *gorm.DB
	log  *logger.Logger
	r    repos.Set
	ai   *llmtest.Fake
	user uuid.UUID

	usage        UsageService
	resolver     NextTargetResolver
	scripts      ScriptService
	beatSheets   BeatSheetService
	descriptions SceneDescriptionService
	generation   GenerationService
	transforms   TransformService
	sync         ScriptSyncService
	segments     SegmentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := repos.NewSet(db, log)
	ai := llmtest.New()
	user := uuid.New()

	h := &harness{
		ctx:  asUser(context.Background(), user),
		db:   db,
		log:  log,
		r:    r,
		ai:   ai,
		user: user,
	}
	h.usage = NewUsageService(log, r.Usage, r.Subscription, UsageConfig{FreeCallLimit: 10})
	h.resolver = NewNextTargetResolver(log, r.Target)
	h.scripts = NewScriptService(db, log, r)
	h.beatSheets = NewBeatSheetService(db, log, ai, h.usage, r)
	h.descriptions = NewSceneDescriptionService(db, log, ai, h.usage, h.resolver, r)
	h.generation = NewGenerationService(db, log, ai, h.usage, h.resolver, h.descriptions, keylock.NewLocal(), 0, r)
	h.transforms = NewTransformService(db, log, ai, h.usage, r)
	h.sync = NewScriptSyncService(db, log, r)
	h.segments = NewSegmentService(db, log, r)
	return h
}

func asUser(ctx context.Context, id uuid.UUID) context.Context {
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: id})
}

// scenesResponder answers every scene_descriptions request with n numbered scenes.
func scenesResponder(n int) func(string, string) (map[string]any, error) {
	var call int
	return func(string, string) (map[string]any, error) {
		call++
		scenes := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			scenes = append(scenes, map[string]any{
				"scene_heading":     fmt.Sprintf("EXT. STREET %d-%d - DAY", call, i),
				"scene_description": fmt.Sprintf("Something happens in scene %d of batch %d.", i, call),
			})
		}
		return map[string]any{"scenes": scenes}, nil
	}
}

func segmentResponse() map[string]any {
	return map[string]any{"components": []any{
		map[string]any{"component_type": "HEADING", "content": "INT. X - DAY", "character_name": "", "parenthetical": ""},
		map[string]any{"component_type": "ACTION", "content": "Rain hammers the window.", "character_name": "", "parenthetical": ""},
		map[string]any{"component_type": "DIALOGUE", "content": "Hi", "character_name": "ANA", "parenthetical": "quietly"},
	}}
}

func alternativesResponse(prefix string) map[string]any {
	out := map[string]any{}
	for _, th := range []string{"concise", "dramatic", "minimal", "poetic", "humorous"} {
		out[th] = map[string]any{"text": prefix + " " + th, "rationale": "because " + th}
	}
	return out
}

// heldLocker reports one key as already held by another process.
type heldLocker struct{ key string }

func newHeldLocker(key string) keylock.Locker { return heldLocker{key: key} }

func (l heldLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if key == l.key {
		return nil, false, nil
	}
	return func() {}, true, nil
}

// hookLocker runs before on every acquisition, standing in for work another process commits while the
// caller waits for the lock.
type hookLocker struct {
	keylock.Locker
	before func()
}

func (l hookLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.before != nil {
		l.before()
	}
	return l.Locker.TryLock(ctx, key, ttl)
}
