package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/keylock"
	"github.com/yungbote/screenplay-backend/internal/platform/llm/llmtest"
)

func seedAIScript(t *testing.T, h *harness, beats, scenesPerBeat int) (*types.Script, []*types.Beat) {
	t.Helper()
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationWithAI)
	sheet := testutil.SeedMasterBeatSheet(t, h.ctx, h.db, domain.BeatSheetBlakeSnyder, beats, scenesPerBeat)
	out := make([]*types.Beat, 0, beats)
	for i := 1; i <= beats; i++ {
		out = append(out, testutil.SeedBeat(t, h.ctx, h.db, script.ID, sheet.ID, i))
	}
	return script, out
}

func TestGenerateNextWalksEveryScene(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(2)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 2, 2)

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 4; i++ {
		res, err := h.generation.GenerateNext(h.ctx, script.ID)
		require.NoError(t, err)
		require.True(t, res.Success, "call %d: %s", i+1, res.Error)
		assert.Equal(t, MsgGenerated, res.Message)
		require.NotNil(t, res.SceneSegmentID)
		require.NotNil(t, res.InputContext.SceneDescriptionID)
		assert.False(t, seen[*res.InputContext.SceneDescriptionID], "scene generated twice")
		seen[*res.InputContext.SceneDescriptionID] = true
		assert.Len(t, res.GeneratedSegment.Components, 3)
		assert.Contains(t, res.FountainText, "INT. X - DAY")
	}

	res, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrAllGenerated, res.Error)

	assert.Equal(t, 2, h.ai.Calls("scene_descriptions"))
	assert.Equal(t, 4, h.ai.Calls("scene_segment"))

	n, err := h.r.SceneSegment.CountLiveByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	reloaded, err := h.r.Script.GetByID(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, reloaded.ScriptProgress)

	used, err := h.r.Usage.CountSince(dbctx.Context{Ctx: h.ctx}, h.user, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 6, used)
}

func TestGenerateNextLoadsSceneContext(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(2)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 1, 2)

	first, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, "Beat 1", first.InputContext.TemplateBeatName)
	assert.Equal(t, "Template beat 1", first.InputContext.TemplateBeatDescription)
	assert.Empty(t, first.InputContext.PreviousScenes)

	second, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.Equal(t, []string{"EXT. STREET 1-1 - DAY"}, second.InputContext.PreviousScenes)
}

func TestGenerateNextSegmentNumbersIncrease(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(1)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 2, 1)

	for i := 0; i < 2; i++ {
		res, err := h.generation.GenerateNext(h.ctx, script.ID)
		require.NoError(t, err)
		require.True(t, res.Success)
	}
	rows, total, err := h.r.SceneSegment.ListByScript(dbctx.Context{Ctx: h.ctx}, script.ID, repos.SegmentListFilter{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	assert.Equal(t, 1000.0, rows[0].SegmentNumber)
	assert.Equal(t, 2000.0, rows[1].SegmentNumber)
}

func TestGetOrGenerateFirstIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(2)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 1, 2)

	first, err := h.generation.GetOrGenerateFirst(h.ctx, script.ID)
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.Equal(t, SourceGenerated, first.Source)

	again, err := h.generation.GetOrGenerateFirst(h.ctx, script.ID)
	require.NoError(t, err)
	require.True(t, again.Success)
	assert.Equal(t, SourceExisting, again.Source)
	assert.Equal(t, MsgFoundExisting, again.Message)
	assert.Equal(t, *first.SceneSegmentID, *again.SceneSegmentID)
	assert.Len(t, again.GeneratedSegment.Components, 3)
	assert.Equal(t, 1, h.ai.Calls("scene_segment"))
}

func TestGetOrGenerateFirstRechecksUnderLock(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(2)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 1, 2)

	var committed *GenerationResult
	locker := hookLocker{Locker: keylock.NewLocal(), before: func() {
		res, err := h.generation.GenerateNext(h.ctx, script.ID)
		require.NoError(t, err)
		require.True(t, res.Success)
		committed = res
	}}
	svc := NewGenerationService(h.db, h.log, h.ai, h.usage, h.resolver, h.descriptions, locker, 0, h.r)

	res, err := svc.GetOrGenerateFirst(h.ctx, script.ID)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, SourceExisting, res.Source)
	assert.Equal(t, *committed.SceneSegmentID, *res.SceneSegmentID)
	assert.Equal(t, 1, h.ai.Calls("scene_segment"))

	total, err := h.r.SceneSegment.CountLiveByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetOrGenerateFirstConcurrentCallersShareOneSegment(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(2)).OnJSON("scene_segment", llmtest.Static(segmentResponse()))
	script, _ := seedAIScript(t, h, 1, 2)

	const callers = 4
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.generation.GetOrGenerateFirst(h.ctx, script.ID)
			errs[i] = err
			if err == nil && res.SceneSegmentID != nil {
				ids[i] = *res.SceneSegmentID
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	n, err := h.r.SceneSegment.CountLiveByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGenerateNextRejectsNonAIScript(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)

	_, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.Error(t, err)
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestGenerateNextHidesForeignScripts(t *testing.T) {
	h := newHarness(t)
	script, _ := seedAIScript(t, h, 1, 1)

	_, err := h.generation.GenerateNext(asUser(h.ctx, uuid.New()), script.ID)
	require.Error(t, err)
	assert.Equal(t, 404, apierr.StatusOf(err))
}

func TestGenerateNextReportsDescriptionFailure(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", func(string, string) (map[string]any, error) {
		return nil, errors.New("upstream timeout")
	})
	script, _ := seedAIScript(t, h, 1, 2)

	res, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgDescriptionsFailed, res.Message)
	assert.Contains(t, res.Error, "upstream timeout")
	assert.Equal(t, 0, h.ai.Calls("scene_segment"))

	trackers, err := h.r.Tracker.ListByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	assert.NotEmpty(t, trackers[0].ErrorMessage)
}

func TestGenerateNextReportsSegmentFailure(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("scene_descriptions", scenesResponder(1)).OnJSON("scene_segment", func(string, string) (map[string]any, error) {
		return map[string]any{"components": []any{}}, nil
	})
	script, _ := seedAIScript(t, h, 1, 1)

	res, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgGenerationFailed, res.Message)

	n, err := h.r.SceneSegment.CountLiveByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateNextWithoutBeatsNeedsDescriptions(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationWithAI)

	res, err := h.generation.GenerateNext(h.ctx, script.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrNoDescriptions, res.Error)
}

func TestGenerateNextConflictsWhileLocked(t *testing.T) {
	h := newHarness(t)
	script, _ := seedAIScript(t, h, 1, 1)
	locker := newHeldLocker("generate:" + script.ID.String())
	svc := NewGenerationService(h.db, h.log, h.ai, h.usage, h.resolver, h.descriptions, locker, 0, h.r)

	_, err := svc.GenerateNext(h.ctx, script.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apierr.StatusOf(err))
}

func TestDecodeSegmentComponentsDemotesNamelessDialogue(t *testing.T) {
	inputs, err := decodeSegmentComponents(map[string]any{"components": []any{
		map[string]any{"component_type": "dialogue", "content": "Who's there?", "character_name": ""},
		map[string]any{"component_type": "SOUND", "content": "ignored"},
		map[string]any{"component_type": "CHARACTER", "content": "BOB"},
		map[string]any{"component_type": "ACTION", "content": "  "},
	}})
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, domain.ComponentAction, inputs[0].ComponentType)
	assert.Equal(t, domain.ComponentCharacter, inputs[1].ComponentType)
	assert.Equal(t, "BOB", *inputs[1].CharacterName)
}
