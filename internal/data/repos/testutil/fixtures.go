package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func PtrString(s string) *string { return &s }

func SeedScript(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, method screenplay.CreationMethod) *types.Script {
	tb.Helper()
	s := &types.Script{
		UserID:         userID,
		Title:          "The Long Night",
		Genre:          "thriller",
		Story:          "A night guard discovers the museum exhibits are moving.",
		CreationMethod: method,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed script: %v", err)
	}
	return s
}

// SeedMasterBeatSheet stores a template with nBeats beats of scenesPerBeat scenes each.
func SeedMasterBeatSheet(tb testing.TB, ctx context.Context, tx *gorm.DB, sheetType screenplay.BeatSheetType, nBeats, scenesPerBeat int) *types.MasterBeatSheet {
	tb.Helper()
	tmpl := screenplay.BeatTemplate{}
	for i := 1; i <= nBeats; i++ {
		tmpl.Beats = append(tmpl.Beats, screenplay.TemplateBeat{
			Position:         i,
			Name:             fmt.Sprintf("Beat %d", i),
			Description:      fmt.Sprintf("Template beat %d", i),
			NumberOfScenes:   scenesPerBeat,
			WordCountMaximum: 900,
		})
	}
	raw, err := json.Marshal(tmpl)
	if err != nil {
		tb.Fatalf("marshal template: %v", err)
	}
	m := &types.MasterBeatSheet{
		Name:          string(sheetType),
		BeatSheetType: sheetType,
		Description:   "test template",
		NumberOfBeats: nBeats,
		Template:      raw,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed master beat sheet: %v", err)
	}
	return m
}

func SeedBeat(tb testing.TB, ctx context.Context, tx *gorm.DB, scriptID, sheetID uuid.UUID, position int) *types.Beat {
	tb.Helper()
	b := &types.Beat{
		ScriptID:          scriptID,
		MasterBeatSheetID: sheetID,
		Position:          position,
		BeatTitle:         fmt.Sprintf("Beat title %d", position),
		BeatDescription:   fmt.Sprintf("What happens in beat %d", position),
		BeatAct:           screenplay.Act1,
	}
	if err := tx.WithContext(ctx).Omit("Script", "MasterBeatSheet").Create(b).Error; err != nil {
		tb.Fatalf("seed beat: %v", err)
	}
	return b
}

func SeedSceneDescription(tb testing.TB, ctx context.Context, tx *gorm.DB, beatID uuid.UUID, position int) *types.SceneDescription {
	tb.Helper()
	sd := &types.SceneDescription{
		BeatID:           beatID,
		Position:         position,
		SceneHeading:     fmt.Sprintf("INT. ROOM %d - NIGHT", position),
		SceneDescription: fmt.Sprintf("Scene %d happens", position),
	}
	if err := tx.WithContext(ctx).Omit("Beat").Create(sd).Error; err != nil {
		tb.Fatalf("seed scene description: %v", err)
	}
	return sd
}

func SeedSegment(tb testing.TB, ctx context.Context, tx *gorm.DB, scriptID uuid.UUID, number float64, sceneDescriptionID *uuid.UUID) *types.SceneSegment {
	tb.Helper()
	seg := &types.SceneSegment{
		ScriptID:           scriptID,
		SceneDescriptionID: sceneDescriptionID,
		SegmentNumber:      number,
	}
	if err := tx.WithContext(ctx).Omit("Script", "Beat", "SceneDescription", "Components").Create(seg).Error; err != nil {
		tb.Fatalf("seed segment: %v", err)
	}
	return seg
}

func SeedComponent(tb testing.TB, ctx context.Context, tx *gorm.DB, segmentID uuid.UUID, ct screenplay.ComponentType, position float64, content string) *types.SceneSegmentComponent {
	tb.Helper()
	c := &types.SceneSegmentComponent{
		SceneSegmentID: segmentID,
		ComponentType:  ct,
		Position:       position,
		Content:        content,
	}
	if ct == screenplay.ComponentDialogue {
		c.CharacterName = PtrString("ANA")
	}
	if err := tx.WithContext(ctx).Omit("SceneSegment").Create(c).Error; err != nil {
		tb.Fatalf("seed component: %v", err)
	}
	return c
}
