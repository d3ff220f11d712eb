package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
)

func action(content string) component.Input {
	return component.Input{ComponentType: domain.ComponentAction, Content: content}
}

func TestSegmentCreateAssignsNumbersAndPositions(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)

	first, err := h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, Components: []component.Input{action("a"), action("b")}})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, first.SegmentNumber)
	require.Len(t, first.Components, 2)
	assert.Equal(t, 1000.0, first.Components[0].Position)
	assert.Equal(t, 2000.0, first.Components[1].Position)

	second, err := h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, Components: []component.Input{action("c")}})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, second.SegmentNumber)

	next, err := h.segments.NextSegmentNumber(h.ctx, script.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, next)

	got, err := h.r.Script.GetByID(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ScriptProgress)
}

func TestSegmentCreateValidation(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	other := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	sheet := testutil.SeedMasterBeatSheet(t, h.ctx, h.db, domain.BeatSheetBlakeSnyder, 2, 1)
	beat := testutil.SeedBeat(t, h.ctx, h.db, script.ID, sheet.ID, 1)
	otherBeat := testutil.SeedBeat(t, h.ctx, h.db, script.ID, sheet.ID, 2)
	sd := testutil.SeedSceneDescription(t, h.ctx, h.db, otherBeat.ID, 1)
	foreign := testutil.SeedBeat(t, h.ctx, h.db, other.ID, sheet.ID, 1)

	_, err := h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID})
	assert.Equal(t, 400, apierr.StatusOf(err))

	_, err = h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, Components: []component.Input{
		{ComponentType: domain.ComponentDialogue, Content: "no speaker"},
	}})
	assert.Equal(t, 400, apierr.StatusOf(err))

	_, err = h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, BeatID: &foreign.ID, Components: []component.Input{action("a")}})
	assert.Equal(t, 404, apierr.StatusOf(err))

	_, err = h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, BeatID: &beat.ID, SceneDescriptionID: &sd.ID, Components: []component.Input{action("a")}})
	assert.Equal(t, 400, apierr.StatusOf(err))

	n, err := h.r.SceneSegment.CountLiveByScript(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "failed creates leave nothing behind")
}

func TestSegmentDeleteHidesSegmentAndComponents(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	seg, err := h.segments.Create(h.ctx, SegmentInput{ScriptID: script.ID, Components: []component.Input{action("a")}})
	require.NoError(t, err)

	require.NoError(t, h.segments.Delete(h.ctx, seg.ID))

	_, err = h.segments.Get(h.ctx, seg.ID)
	assert.Equal(t, 404, apierr.StatusOf(err))
	list, err := h.segments.ListForScript(h.ctx, script.ID, repos.SegmentListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	live, err := h.r.Component.GetByIDs(dbctx.Context{Ctx: h.ctx}, []uuid.UUID{seg.Components[0].ID})
	require.NoError(t, err)
	assert.Empty(t, live)

	got, err := h.r.Script.GetByID(dbctx.Context{Ctx: h.ctx}, script.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ScriptProgress)
}

func TestSegmentListPagesInOrder(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	for _, n := range []float64{3000, 1000, 2000} {
		testutil.SeedSegment(t, h.ctx, h.db, script.ID, n, nil)
	}

	list, err := h.segments.ListForScript(h.ctx, script.ID, repos.SegmentListFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
	require.Len(t, list.Segments, 1)
	assert.Equal(t, 2000.0, list.Segments[0].SegmentNumber)
}

func TestSegmentReorderAndUpdate(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	sheet := testutil.SeedMasterBeatSheet(t, h.ctx, h.db, domain.BeatSheetBlakeSnyder, 1, 1)
	beat := testutil.SeedBeat(t, h.ctx, h.db, script.ID, sheet.ID, 1)
	sd := testutil.SeedSceneDescription(t, h.ctx, h.db, beat.ID, 1)
	seg := testutil.SeedSegment(t, h.ctx, h.db, script.ID, 1000, nil)

	moved, err := h.segments.Reorder(h.ctx, seg.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, moved.SegmentNumber)

	linked, err := h.segments.Update(h.ctx, seg.ID, SegmentPatch{SceneDescriptionID: &sd.ID})
	require.NoError(t, err)
	require.NotNil(t, linked.SceneDescriptionID)
	assert.Equal(t, sd.ID, *linked.SceneDescriptionID)

	_, err = h.segments.Update(h.ctx, seg.ID, SegmentPatch{BeatID: testutil.PtrUUID(uuid.New())})
	assert.Equal(t, 404, apierr.StatusOf(err))
}

func TestComponentLifecycle(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	seg := testutil.SeedSegment(t, h.ctx, h.db, script.ID, 1000, nil)
	a := testutil.SeedComponent(t, h.ctx, h.db, seg.ID, domain.ComponentAction, 1000, "a")
	b := testutil.SeedComponent(t, h.ctx, h.db, seg.ID, domain.ComponentAction, 2000, "b")

	added, err := h.segments.AddComponent(h.ctx, seg.ID, component.Input{
		ComponentType: domain.ComponentDialogue, Content: "Hey.", CharacterName: testutil.PtrString("LEE"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, added.Position)

	next, err := h.segments.NextComponentPosition(h.ctx, seg.ID)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, next)

	// DIALOGUE -> ACTION drops the speaker
	actionType := domain.ComponentAction
	changed, err := h.segments.UpdateComponent(h.ctx, added.ID, ComponentPatch{ComponentType: &actionType})
	require.NoError(t, err)
	assert.Equal(t, domain.ComponentAction, changed.ComponentType)
	assert.Nil(t, changed.CharacterName)
	assert.Equal(t, "Hey.", changed.Content)

	_, err = h.segments.UpdateComponent(h.ctx, a.ID, ComponentPatch{Parenthetical: testutil.PtrString("softly")})
	assert.Equal(t, 400, apierr.StatusOf(err))

	after, err := h.segments.ReorderComponent(h.ctx, ComponentReorder{ComponentID: added.ID, AfterComponentID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, after.Position)

	end, err := h.segments.ReorderComponent(h.ctx, ComponentReorder{ComponentID: a.ID, MoveToEnd: true})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, end.Position)

	ordered, err := h.r.Component.ListBySegmentIDs(dbctx.Context{Ctx: h.ctx}, []uuid.UUID{seg.ID})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []uuid.UUID{added.ID, b.ID, a.ID}, []uuid.UUID{ordered[0].ID, ordered[1].ID, ordered[2].ID})

	require.NoError(t, h.segments.DeleteComponent(h.ctx, b.ID))
	err = h.segments.DeleteComponent(h.ctx, b.ID)
	assert.Equal(t, 404, apierr.StatusOf(err))
}

func TestBatchUpdateComponentsUpsertsInOrder(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	seg := testutil.SeedSegment(t, h.ctx, h.db, script.ID, 1000, nil)
	existing := testutil.SeedComponent(t, h.ctx, h.db, seg.ID, domain.ComponentAction, 1000, "old")
	gone := uuid.New()

	out, err := h.segments.BatchUpdateComponents(h.ctx, seg.ID, []ComponentUpsert{
		{ID: &existing.ID, Input: component.Input{ComponentType: domain.ComponentAction, Position: 1000, Content: "new"}},
		{Input: action("appended")},
		{ID: &gone, Input: action("unknown id becomes new")},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, existing.ID, out[0].ID)
	assert.Equal(t, "new", out[0].Content)
	assert.Equal(t, 2000.0, out[1].Position)
	assert.Equal(t, 3000.0, out[2].Position)
	assert.NotEqual(t, gone, out[2].ID)

	_, err = h.segments.BatchUpdateComponents(h.ctx, seg.ID, []ComponentUpsert{{Input: component.Input{ComponentType: "SONG"}}})
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestAutoFormatComponent(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	seg := testutil.SeedSegment(t, h.ctx, h.db, script.ID, 1000, nil)
	c := testutil.SeedComponent(t, h.ctx, h.db, seg.ID, domain.ComponentTransition, 1000, "cut to:")

	got, err := h.segments.AutoFormat(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "CUT TO:", got.Content)

	stored, err := h.r.Component.GetByID(dbctx.Context{Ctx: h.ctx}, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "CUT TO:", stored.Content)
}

func TestCreateFromTextAndExport(t *testing.T) {
	h := newHarness(t)
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)

	_, err := h.segments.ExportFountain(h.ctx, script.ID)
	assert.Equal(t, 404, apierr.StatusOf(err))

	text := "INT. DINER - NIGHT\n\nRain hammers the glass.\n\nANA\n(tired)\nWe're closed.\n"
	seg, err := h.segments.CreateFromText(h.ctx, FromTextInput{ScriptID: script.ID, Text: text})
	require.NoError(t, err)
	require.Len(t, seg.Components, 3)
	assert.Equal(t, domain.ComponentHeading, seg.Components[0].ComponentType)
	assert.Equal(t, domain.ComponentDialogue, seg.Components[2].ComponentType)
	assert.Equal(t, "ANA", *seg.Components[2].CharacterName)

	out, err := h.segments.ExportFountain(h.ctx, script.ID)
	require.NoError(t, err)
	assert.Equal(t, "INT. DINER - NIGHT\n\nRain hammers the glass.\n\nANA\n(tired)\nWe're closed.", out)

	_, err = h.segments.CreateFromText(h.ctx, FromTextInput{ScriptID: script.ID, Text: "   "})
	assert.Equal(t, 400, apierr.StatusOf(err))
}
