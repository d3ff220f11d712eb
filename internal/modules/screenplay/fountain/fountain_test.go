package fountain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

func str(s string) *string { return &s }

func TestRender(t *testing.T) {
	comps := []*domain.SceneSegmentComponent{
		{ComponentType: domain.ComponentHeading, Content: "int. diner - night"},
		{ComponentType: domain.ComponentAction, Content: "Rain hammers the glass."},
		{ComponentType: domain.ComponentDialogue, Content: "We're closed.", CharacterName: str("ana"), Parenthetical: str("without looking up")},
		{ComponentType: domain.ComponentDialogue, Content: "Door was open.", CharacterName: str("MARCUS")},
		{ComponentType: domain.ComponentCharacter, Content: "cook"},
		{ComponentType: domain.ComponentTransition, Content: "cut to:"},
	}
	want := "INT. DINER - NIGHT\n\n" +
		"Rain hammers the glass.\n\n" +
		"ANA\n(without looking up)\nWe're closed.\n\n" +
		"MARCUS\nDoor was open.\n\n" +
		"COOK\n\n" +
		"CUT TO:"
	assert.Equal(t, want, Render(comps))
}

func TestRenderUnknownTypeFallsBackToContent(t *testing.T) {
	comps := []*domain.SceneSegmentComponent{
		{ComponentType: domain.ComponentParenthetical, Content: " (beat) "},
		{ComponentType: domain.ComponentCharacter, Content: "cook", CharacterName: str("Chef")},
	}
	assert.Equal(t, "(beat)\n\nCHEF", Render(comps))
}

func TestRenderScriptOrdersSegmentsAndComponents(t *testing.T) {
	segs := []*domain.SceneSegment{
		{SegmentNumber: 2000, Components: []domain.SceneSegmentComponent{
			{ComponentType: domain.ComponentAction, Content: "second", Position: 1000},
		}},
		{SegmentNumber: 1000, Components: []domain.SceneSegmentComponent{
			{ComponentType: domain.ComponentAction, Content: "b", Position: 2000},
			{ComponentType: domain.ComponentAction, Content: "hidden", Position: 1500, SoftDelete: domain.SoftDelete{IsDeleted: true}},
			{ComponentType: domain.ComponentHeading, Content: "a", Position: 1000},
		}},
	}
	assert.Equal(t, "A\n\nb\n\nsecond", RenderScript(segs))
}

func TestParse(t *testing.T) {
	text := "INT. DINER - NIGHT\n" +
		"\n" +
		"Rain hammers the glass.\n" +
		"Ana wipes the counter.\n" +
		"\n" +
		"ANA\n" +
		"(tired)\n" +
		"We're closed.\n" +
		"Come back tomorrow.\n" +
		"\n" +
		"CUT TO:\n" +
		"\n" +
		"Marcus leaves.\n"
	got := Parse(text)
	require.Len(t, got, 5)

	assert.Equal(t, domain.ComponentHeading, got[0].ComponentType)
	assert.Equal(t, "INT. DINER - NIGHT", got[0].Content)

	assert.Equal(t, domain.ComponentAction, got[1].ComponentType)
	assert.Equal(t, "Rain hammers the glass.\nAna wipes the counter.", got[1].Content)

	assert.Equal(t, domain.ComponentDialogue, got[2].ComponentType)
	assert.Equal(t, "ANA", *got[2].CharacterName)
	assert.Equal(t, "tired", *got[2].Parenthetical)
	assert.Equal(t, "We're closed.\nCome back tomorrow.", got[2].Content)

	assert.Equal(t, domain.ComponentTransition, got[3].ComponentType)
	assert.Equal(t, "CUT TO:", got[3].Content)

	assert.Equal(t, domain.ComponentAction, got[4].ComponentType)
}

func TestParseWithoutHeading(t *testing.T) {
	got := Parse("the door creaks open.\nnobody is there.")
	require.Len(t, got, 1)
	assert.Equal(t, domain.ComponentAction, got[0].ComponentType)
}

func TestParseLoneCueFallsBackToAction(t *testing.T) {
	got := Parse("a quiet room.\nBANG\n")
	require.Len(t, got, 2)
	assert.Equal(t, domain.ComponentAction, got[1].ComponentType)
	assert.Equal(t, "BANG", got[1].Content)
}

func TestCaseHelpers(t *testing.T) {
	assert.True(t, isUpper("INT. BAR - 2 AM"))
	assert.False(t, isUpper("123 - ."))
	assert.False(t, isUpper("Int. Bar"))
	assert.True(t, isTitle("Int. Bar - Night"))
	assert.False(t, isTitle("Int. bar"))
	assert.False(t, isTitle("INT. BAR"))
}
