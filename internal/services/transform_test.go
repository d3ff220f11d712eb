package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/apierr"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/llm/llmtest"
)

func seedComponent(t *testing.T, h *harness, ct domain.ComponentType, content string) *types.SceneSegmentComponent {
	t.Helper()
	script := testutil.SeedScript(t, h.ctx, h.db, h.user, domain.CreationFromScratch)
	seg := testutil.SeedSegment(t, h.ctx, h.db, script.ID, 1000, nil)
	return testutil.SeedComponent(t, h.ctx, h.db, seg.ID, ct, 1000, content)
}

func TestTransformReturnsFiveThemedAlternatives(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("Shorter")))
	c := seedComponent(t, h, domain.ComponentAction, "The rain keeps falling on the empty street outside.")

	res, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformShorten)
	require.NoError(t, err)
	assert.Equal(t, c.Content, res.OriginalText)
	require.Len(t, res.Alternatives, 5)
	for i, th := range domain.Themes {
		assert.Equal(t, th, res.Alternatives[i].AlternativeType)
		assert.Equal(t, "Shorter "+string(th), res.Alternatives[i].Text)
	}

	stored, err := h.r.Alternative.ListByComponent(dbctx.Context{Ctx: h.ctx}, c.ID, domain.TransformShorten)
	require.NoError(t, err)
	assert.Len(t, stored, 5)

	byType, err := h.r.Usage.CountByTypeSince(dbctx.Context{Ctx: h.ctx}, h.user, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byType[billing.CallShortening])
}

func TestTransformReplacesPreviousSet(t *testing.T) {
	h := newHarness(t)
	c := seedComponent(t, h, domain.ComponentDialogue, "I never said that.")

	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("first")))
	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformRewrite)
	require.NoError(t, err)
	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("second")))
	_, err = h.transforms.Transform(h.ctx, c.ID, domain.TransformRewrite)
	require.NoError(t, err)

	stored, err := h.r.Alternative.ListByComponent(dbctx.Context{Ctx: h.ctx}, c.ID, domain.TransformRewrite)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	for _, a := range stored {
		assert.Contains(t, a.Text, "second")
	}
	assert.Contains(t, h.ai.LastPrompt("component_alternatives"), "ANA")
}

func TestTransformRejectsUntransformableTypes(t *testing.T) {
	h := newHarness(t)
	c := seedComponent(t, h, domain.ComponentHeading, "INT. KITCHEN - NIGHT")

	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformExpand)
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, ae.Status)
	assert.Contains(t, ae.Error(), "cannot transform component of type HEADING")
	assert.Equal(t, 0, h.ai.Calls("component_alternatives"))
}

func TestTransformRejectsUnknownKind(t *testing.T) {
	h := newHarness(t)
	c := seedComponent(t, h, domain.ComponentAction, "x")

	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformKind("summarize"))
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestTransformIncompleteOutputIsBadGateway(t *testing.T) {
	h := newHarness(t)
	partial := alternativesResponse("x")
	delete(partial, "poetic")
	h.ai.OnJSON("component_alternatives", llmtest.Static(partial))
	c := seedComponent(t, h, domain.ComponentAction, "x")

	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformShorten)
	assert.Equal(t, 502, apierr.StatusOf(err))

	stored, err := h.r.Alternative.ListByComponent(dbctx.Context{Ctx: h.ctx}, c.ID, domain.TransformShorten)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestTransformForeignComponentIsNotFound(t *testing.T) {
	h := newHarness(t)
	c := seedComponent(t, h, domain.ComponentAction, "x")

	_, err := h.transforms.Transform(asUser(h.ctx, uuid.New()), c.ID, domain.TransformShorten)
	assert.Equal(t, 404, apierr.StatusOf(err))
}

func TestApplyAlternativeMessages(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("Short")))
	c := seedComponent(t, h, domain.ComponentAction, "A very long line of action.")
	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformShorten)
	require.NoError(t, err)

	res, err := h.transforms.Apply(h.ctx, c.ID, domain.TransformShorten, "Short concise")
	require.NoError(t, err)
	assert.True(t, res.WasUpdated)
	assert.True(t, res.WasRecorded)
	assert.Equal(t, MsgAppliedAndRecorded, res.Message)
	assert.Equal(t, "Short concise", res.Component.Content)

	res, err = h.transforms.Apply(h.ctx, c.ID, domain.TransformShorten, "Short concise")
	require.NoError(t, err)
	assert.False(t, res.WasUpdated)
	assert.False(t, res.WasRecorded)
	assert.Equal(t, MsgAlreadyApplied, res.Message)

	// user edits the line by hand, then re-applies the same theme
	require.NoError(t, h.r.Component.UpdateFields(dbctx.Context{Ctx: h.ctx}, c.ID, map[string]interface{}{"content": "edited"}))
	res, err = h.transforms.Apply(h.ctx, c.ID, domain.TransformShorten, "Short concise")
	require.NoError(t, err)
	assert.True(t, res.WasUpdated)
	assert.False(t, res.WasRecorded)
	assert.Equal(t, MsgAppliedSameTheme, res.Message)

	history, err := h.r.SelectionHistory.ListByComponent(dbctx.Context{Ctx: h.ctx}, c.ID, domain.TransformShorten)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestApplyRecordsSelectionWhenContentAlreadyMatches(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("Same")))
	c := seedComponent(t, h, domain.ComponentAction, "Same concise")
	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformRewrite)
	require.NoError(t, err)

	res, err := h.transforms.Apply(h.ctx, c.ID, domain.TransformRewrite, "Same concise")
	require.NoError(t, err)
	assert.False(t, res.WasUpdated)
	assert.True(t, res.WasRecorded)
	assert.Equal(t, MsgAlreadyAppliedNewly, res.Message)
}

func TestApplyContinuationAppends(t *testing.T) {
	h := newHarness(t)
	h.ai.OnJSON("component_alternatives", llmtest.Static(alternativesResponse("Then")))
	c := seedComponent(t, h, domain.ComponentAction, "She opens the door.")
	_, err := h.transforms.Transform(h.ctx, c.ID, domain.TransformContinue)
	require.NoError(t, err)

	res, err := h.transforms.Apply(h.ctx, c.ID, domain.TransformContinue, "Then dramatic")
	require.NoError(t, err)
	assert.Equal(t, "She opens the door. Then dramatic", res.Component.Content)

	res, err = h.transforms.Apply(h.ctx, c.ID, domain.TransformContinue, "Then dramatic")
	require.NoError(t, err)
	assert.False(t, res.WasUpdated)
	assert.Equal(t, "She opens the door. Then dramatic", res.Component.Content)
}

func TestApplyUnknownAlternativeIsNotFound(t *testing.T) {
	h := newHarness(t)
	c := seedComponent(t, h, domain.ComponentAction, "x")

	_, err := h.transforms.Apply(h.ctx, c.ID, domain.TransformShorten, "never generated")
	assert.Equal(t, 404, apierr.StatusOf(err))

	_, err = h.transforms.Apply(h.ctx, c.ID, domain.TransformShorten, "  ")
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestAppliedContent(t *testing.T) {
	next, changed := appliedContent(domain.TransformContinue, "Line.\n", "More.")
	assert.True(t, changed)
	assert.Equal(t, "Line.\nMore.", next)

	next, changed = appliedContent(domain.TransformContinue, "", "Start.")
	assert.True(t, changed)
	assert.Equal(t, "Start.", next)

	_, changed = appliedContent(domain.TransformExpand, "same", "same")
	assert.False(t, changed)
}

func TestAppliedContentSeparatesMultiByteEndings(t *testing.T) {
	next, _ := appliedContent(domain.TransformContinue, "Il dit voilà", "Puis il part.")
	assert.Equal(t, "Il dit voilà Puis il part.", next)

	next, _ = appliedContent(domain.TransformContinue, "HALLÅ", "He sits.")
	assert.Equal(t, "HALLÅ He sits.", next)

	next, _ = appliedContent(domain.TransformContinue, "Wait ", "Go.")
	assert.Equal(t, "Wait Go.", next)
}
