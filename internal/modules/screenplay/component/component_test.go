package component

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

func str(s string) *string { return &s }

func TestFromRowApplyToRoundTrip(t *testing.T) {
	bodies := []Body{
		Heading{Text: "INT. DINER - NIGHT"},
		Action{Text: "Rain hammers the window."},
		Dialogue{Character: "ANA", Parenthetical: "quietly", Line: "We close at two."},
		Character{Name: "MARCUS"},
		Transition{Text: "CUT TO:"},
	}
	for _, b := range bodies {
		t.Run(string(b.Type()), func(t *testing.T) {
			row := &domain.SceneSegmentComponent{CharacterName: str("stale"), Parenthetical: str("stale")}
			ApplyTo(b, row)
			assert.Equal(t, b.Type(), row.ComponentType)
			got, err := FromRow(row)
			require.NoError(t, err)
			assert.Equal(t, b, got)
		})
	}
}

func TestApplyToClearsDialogueFields(t *testing.T) {
	row := &domain.SceneSegmentComponent{CharacterName: str("ANA"), Parenthetical: str("softly")}
	ApplyTo(Action{Text: "She leaves."}, row)
	assert.Nil(t, row.CharacterName)
	assert.Nil(t, row.Parenthetical)
}

func TestFromRowUnknownType(t *testing.T) {
	_, err := FromRow(&domain.SceneSegmentComponent{ComponentType: domain.ComponentParenthetical})
	assert.Error(t, err)
}

func TestInputValidate(t *testing.T) {
	cases := []struct {
		name    string
		in      Input
		wantErr string
	}{
		{"action ok", Input{ComponentType: domain.ComponentAction, Content: "x"}, ""},
		{"dialogue ok", Input{ComponentType: domain.ComponentDialogue, Content: "hi", CharacterName: str("ANA"), Parenthetical: str("beat")}, ""},
		{"character ok", Input{ComponentType: domain.ComponentCharacter, Content: "ANA", CharacterName: str("ANA")}, ""},
		{"dialogue needs name", Input{ComponentType: domain.ComponentDialogue, Content: "hi"}, "character_name is required"},
		{"paren on action", Input{ComponentType: domain.ComponentAction, Parenthetical: str("x")}, "parenthetical is only allowed"},
		{"paren on character", Input{ComponentType: domain.ComponentCharacter, Parenthetical: str("x")}, "parenthetical is only allowed"},
		{"name on heading", Input{ComponentType: domain.ComponentHeading, CharacterName: str("ANA")}, "character_name is only allowed"},
		{"pseudo type", Input{ComponentType: domain.ComponentParenthetical}, "invalid component_type"},
		{"unknown type", Input{ComponentType: "SHOT"}, "invalid component_type"},
		{"missing type", Input{}, "invalid component_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestInputRow(t *testing.T) {
	seg := uuid.New()
	row := Input{ComponentType: domain.ComponentDialogue, Position: 2000, Content: "Go.", CharacterName: str(" ANA "), Parenthetical: str("")}.Row(seg)
	assert.Equal(t, seg, row.SceneSegmentID)
	require.NotNil(t, row.CharacterName)
	assert.Equal(t, "ANA", *row.CharacterName)
	assert.Nil(t, row.Parenthetical)

	action := Input{ComponentType: domain.ComponentAction, Content: "x"}.Row(seg)
	assert.Nil(t, action.CharacterName)
	assert.True(t, Input{ComponentType: domain.ComponentParenthetical}.IsPseudoParenthetical())
}

func TestTransformable(t *testing.T) {
	assert.True(t, Transformable(Action{Text: "x"}))
	assert.True(t, Transformable(Dialogue{Character: "ANA", Line: "x"}))
	assert.False(t, Transformable(Heading{Text: "x"}))
	assert.False(t, Transformable(Transition{Text: "x"}))
	assert.False(t, Transformable(Character{Name: "x"}))
	assert.False(t, Transformable(nil))
}

func TestInputBody(t *testing.T) {
	assert.Equal(t, Dialogue{Character: "ANA", Parenthetical: "softly", Line: "Go."},
		Input{ComponentType: domain.ComponentDialogue, Content: "Go.", CharacterName: str(" ANA "), Parenthetical: str(" softly ")}.Body())
	assert.Equal(t, Character{Name: "COOK"}, Input{ComponentType: domain.ComponentCharacter, Content: "COOK"}.Body())
	assert.Nil(t, Input{ComponentType: domain.ComponentParenthetical, Content: "(beat)"}.Body())

	row := Input{ComponentType: domain.ComponentCharacter, Content: "cook", CharacterName: str(" COOK ")}.Row(uuid.New())
	assert.Equal(t, "COOK", row.Content)
	require.NotNil(t, row.CharacterName)
	assert.Equal(t, "COOK", *row.CharacterName)
}

func TestFormatVariants(t *testing.T) {
	assert.Equal(t, Heading{Text: "INT. KITCHEN - DAY"}, Format(Heading{Text: "kitchen"}))
	assert.Equal(t, Dialogue{Character: "ANA", Parenthetical: "beat", Line: "Fine."},
		Format(Dialogue{Character: " ana", Parenthetical: "(Beat)", Line: "Fine."}))
	assert.Equal(t, Action{Text: "she runs."}, Format(Action{Text: "she runs."}))
}

func TestAutoFormatLeavesUnknownRows(t *testing.T) {
	row := &domain.SceneSegmentComponent{ComponentType: domain.ComponentParenthetical, Content: "(Beat)"}
	AutoFormat(row)
	assert.Equal(t, "(Beat)", row.Content)
	assert.Equal(t, domain.ComponentParenthetical, row.ComponentType)
}

func TestFormatHeading(t *testing.T) {
	cases := map[string]string{
		"kitchen":                    "INT. KITCHEN - DAY",
		"ext. park - night":          "EXT. PARK - NIGHT",
		"int./ext. car - continuous": "INT./EXT. CAR - CONTINUOUS",
		"warehouse ext. dusk":        "EXT. WAREHOUSE DUSK",
		"  INT.   OFFICE  ":          "INT. OFFICE - DAY",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatHeading(in), in)
	}
}

func TestFormatTransition(t *testing.T) {
	assert.Equal(t, "CUT TO:", FormatTransition("cut"))
	assert.Equal(t, "DISSOLVE TO:", FormatTransition("dissolve to:"))
	assert.Equal(t, "SMASH TO:", FormatTransition("smash:"))
}

func TestAutoFormatDialogue(t *testing.T) {
	row := &domain.SceneSegmentComponent{
		ComponentType: domain.ComponentDialogue,
		Content:       "Leave it.",
		CharacterName: str(" ana "),
		Parenthetical: str("(Whispering)"),
	}
	AutoFormat(row)
	assert.Equal(t, "ANA", *row.CharacterName)
	assert.Equal(t, "whispering", *row.Parenthetical)
	assert.Equal(t, "Leave it.", row.Content)

	action := &domain.SceneSegmentComponent{ComponentType: domain.ComponentAction, Content: "she runs."}
	AutoFormat(action)
	assert.Equal(t, "she runs.", action.Content)
}
