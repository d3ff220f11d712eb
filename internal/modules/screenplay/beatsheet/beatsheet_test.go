package beatsheet

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

func sheetWithActs(t *testing.T, acts ...domain.BeatAct) *domain.MasterBeatSheet {
	t.Helper()
	tmpl := domain.BeatTemplate{}
	for i, a := range acts {
		tmpl.Beats = append(tmpl.Beats, domain.TemplateBeat{Position: i + 1, Name: "b", Act: a})
	}
	raw, err := json.Marshal(tmpl)
	require.NoError(t, err)
	return &domain.MasterBeatSheet{ID: uuid.New(), BeatSheetType: domain.BeatSheetBlakeSnyder, NumberOfBeats: len(acts), Template: raw}
}

func TestToBeats(t *testing.T) {
	sheet := sheetWithActs(t, domain.Act1, domain.Act2A, domain.Act3)
	scriptID := uuid.New()
	beats, err := ToBeats(scriptID, sheet, []GeneratedBeat{
		{BeatTitle: "Opening", Description: " start ", Act: "Act 1"},
		{BeatTitle: "Opening", Description: "again"},
		{BeatName: "Finale", Act: "nonsense"},
	})
	require.NoError(t, err)
	require.Len(t, beats, 3)

	assert.Equal(t, []int{1, 2, 3}, []int{beats[0].Position, beats[1].Position, beats[2].Position})
	assert.Equal(t, "Opening", beats[0].BeatTitle)
	assert.Equal(t, "Opening (2)", beats[1].BeatTitle)
	assert.Equal(t, "Finale", beats[2].BeatTitle)
	assert.Equal(t, "start", beats[0].BeatDescription)

	assert.Equal(t, domain.Act1, beats[0].BeatAct)
	assert.Equal(t, domain.Act2A, beats[1].BeatAct)
	assert.Equal(t, domain.Act3, beats[2].BeatAct)
	for _, b := range beats {
		assert.Equal(t, scriptID, b.ScriptID)
		assert.Equal(t, sheet.ID, b.MasterBeatSheetID)
	}
}

func TestToBeatsDerivesActWithoutTemplate(t *testing.T) {
	sheet := sheetWithActs(t)
	gen := make([]GeneratedBeat, 4)
	beats, err := ToBeats(uuid.New(), sheet, gen)
	require.NoError(t, err)
	assert.Equal(t, domain.Act1, beats[0].BeatAct)
	assert.Equal(t, domain.Act2A, beats[1].BeatAct)
	assert.Equal(t, domain.Act2B, beats[2].BeatAct)
	assert.Equal(t, domain.Act3, beats[3].BeatAct)
	assert.Equal(t, "Beat 4", beats[3].BeatTitle)
}

func TestToBeatsRejectsEmpty(t *testing.T) {
	_, err := ToBeats(uuid.New(), sheetWithActs(t), nil)
	assert.Error(t, err)
}

func TestNormalizeAct(t *testing.T) {
	assert.Equal(t, domain.Act2B, NormalizeAct("Act 2B"))
	assert.Equal(t, domain.Act1, NormalizeAct("act_1"))
	assert.Equal(t, domain.Act3, NormalizeAct("ACT III"))
	assert.False(t, NormalizeAct("prologue").Valid())
}

func TestStreamDecoderEmitsBeatsAsTheyClose(t *testing.T) {
	doc := `{"beats":[{"beat_number":1,"beat_title":"Open {brace}","description":"a \"quoted\" ] thing","act":"act_1"},` +
		`{"beat_number":2,"beat_title":"Theme","description":"b","act":"act_1","extra":{"nested":[1,2]}}]}`
	d := NewStreamDecoder()
	var got []GeneratedBeat
	for i := 0; i < len(doc); i += 7 {
		end := i + 7
		if end > len(doc) {
			end = len(doc)
		}
		beats, err := d.Write(doc[i:end])
		require.NoError(t, err)
		got = append(got, beats...)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "Open {brace}", got[0].BeatTitle)
	assert.Equal(t, `a "quoted" ] thing`, got[0].Description)
	assert.Equal(t, 2, got[1].BeatNumber)
	assert.Equal(t, doc, d.Text())
}

func TestStreamDecoderBareArrayAndPreamble(t *testing.T) {
	d := NewStreamDecoder()
	beats, err := d.Write("Sure! ```json\n[{\"beat_title\":\"A\"},")
	require.NoError(t, err)
	require.Len(t, beats, 1)
	beats, err = d.Write("{\"beat_title\":\"B\"}]\n```")
	require.NoError(t, err)
	require.Len(t, beats, 1)
	assert.Equal(t, "B", beats[0].BeatTitle)
}
