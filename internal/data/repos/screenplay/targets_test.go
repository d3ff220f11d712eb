package screenplay

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
)

func TestTargetRepoFirstBeatWithoutSceneDescriptionsIgnoresInsertionOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTargetRepo(db, testutil.Logger(t))

	script := testutil.SeedScript(t, ctx, tx, uuid.New(), domain.CreationWithAI)
	sheet := testutil.SeedMasterBeatSheet(t, ctx, tx, domain.BeatSheetBlakeSnyder, 3, 2)

	// Insert out of position order.
	b3 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 3)
	b2 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 2)
	b1 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 1)
	testutil.SeedSceneDescription(t, ctx, tx, b3.ID, 1)
	testutil.SeedSceneDescription(t, ctx, tx, b1.ID, 1)

	got, err := repo.FirstBeatWithoutSceneDescriptions(dbc, script.ID)
	if err != nil || got == nil {
		t.Fatalf("FirstBeatWithoutSceneDescriptions: err=%v got=%v", err, got)
	}
	if got.ID != b2.ID {
		t.Fatalf("expected beat 2, got position %d", got.Position)
	}

	testutil.SeedSceneDescription(t, ctx, tx, b2.ID, 1)
	got, err = repo.FirstBeatWithoutSceneDescriptions(dbc, script.ID)
	if err != nil || got != nil {
		t.Fatalf("expected none: err=%v got=%v", err, got)
	}
}

func TestTargetRepoSoftDeletedDescriptionDoesNotCount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTargetRepo(db, testutil.Logger(t))
	descs := NewSceneDescriptionRepo(db, testutil.Logger(t))

	script := testutil.SeedScript(t, ctx, tx, uuid.New(), domain.CreationWithAI)
	sheet := testutil.SeedMasterBeatSheet(t, ctx, tx, domain.BeatSheetBlakeSnyder, 1, 2)
	b1 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 1)
	sd := testutil.SeedSceneDescription(t, ctx, tx, b1.ID, 1)

	if err := descs.SoftDeleteByIDs(dbc, []uuid.UUID{sd.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	got, err := repo.FirstBeatWithoutSceneDescriptions(dbc, script.ID)
	if err != nil || got == nil || got.ID != b1.ID {
		t.Fatalf("expected beat 1 after soft delete: err=%v got=%v", err, got)
	}
	n, err := repo.CountSceneDescriptions(dbc, script.ID)
	if err != nil || n != 0 {
		t.Fatalf("CountSceneDescriptions: err=%v n=%d", err, n)
	}
}

func TestTargetRepoFirstSceneDescriptionWithoutSegment(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTargetRepo(db, testutil.Logger(t))
	segments := NewSceneSegmentRepo(db, testutil.Logger(t))

	script := testutil.SeedScript(t, ctx, tx, uuid.New(), domain.CreationWithAI)
	sheet := testutil.SeedMasterBeatSheet(t, ctx, tx, domain.BeatSheetBlakeSnyder, 2, 2)
	b2 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 2)
	b1 := testutil.SeedBeat(t, ctx, tx, script.ID, sheet.ID, 1)
	b2s1 := testutil.SeedSceneDescription(t, ctx, tx, b2.ID, 1)
	b1s2 := testutil.SeedSceneDescription(t, ctx, tx, b1.ID, 2)
	b1s1 := testutil.SeedSceneDescription(t, ctx, tx, b1.ID, 1)

	got, err := repo.FirstSceneDescriptionWithoutSegment(dbc, script.ID)
	if err != nil || got == nil || got.ID != b1s1.ID {
		t.Fatalf("expected beat1/scene1: err=%v got=%v", err, got)
	}
	if got.SceneDetailForUI == "" {
		t.Fatalf("expected scene_detail_for_ui to be derived on load")
	}

	testutil.SeedSegment(t, ctx, tx, script.ID, 1000, testutil.PtrUUID(b1s1.ID))
	got, _ = repo.FirstSceneDescriptionWithoutSegment(dbc, script.ID)
	if got == nil || got.ID != b1s2.ID {
		t.Fatalf("expected beat1/scene2, got %v", got)
	}

	seg := testutil.SeedSegment(t, ctx, tx, script.ID, 2000, testutil.PtrUUID(b1s2.ID))
	got, _ = repo.FirstSceneDescriptionWithoutSegment(dbc, script.ID)
	if got == nil || got.ID != b2s1.ID {
		t.Fatalf("expected beat2/scene1, got %v", got)
	}

	// A soft-deleted segment frees its scene description again.
	if err := segments.SoftDeleteWithComponents(dbc, []uuid.UUID{seg.ID}); err != nil {
		t.Fatalf("SoftDeleteWithComponents: %v", err)
	}
	got, _ = repo.FirstSceneDescriptionWithoutSegment(dbc, script.ID)
	if got == nil || got.ID != b1s2.ID {
		t.Fatalf("expected beat1/scene2 after delete, got %v", got)
	}

	headings, err := repo.HeadingsBefore(dbc, script.ID, 2, 1)
	if err != nil || len(headings) != 2 {
		t.Fatalf("HeadingsBefore: err=%v headings=%v", err, headings)
	}
	if headings[0] != b1s1.SceneHeading || headings[1] != b1s2.SceneHeading {
		t.Fatalf("HeadingsBefore order: %v", headings)
	}
}
