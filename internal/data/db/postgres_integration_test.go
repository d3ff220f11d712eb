//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/db"
	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	"github.com/yungbote/screenplay-backend/internal/data/seed"
	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("screenplay_test"),
		tcpostgres.WithUsername("screenplay"),
		tcpostgres.WithPassword("screenplay"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	gdb, err := db.Open(postgres.Open(dsn))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(gdb))
	return gdb
}

func TestPostgresMigrateSeedAndConstraints(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	r := repos.NewSet(gdb, log)

	var seeded int
	err := db.NewTxRunner(gdb).InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		seeded, err = seed.Templates(dbc, r.MasterBeatSheet, log)
		return err
	})
	require.NoError(t, err)
	require.Positive(t, seeded)

	// Seeding twice upserts in place.
	err = db.NewTxRunner(gdb).InTx(ctx, func(dbc dbctx.Context) error {
		_, err := seed.Templates(dbc, r.MasterBeatSheet, log)
		return err
	})
	require.NoError(t, err)
	var count int64
	require.NoError(t, gdb.Model(&types.MasterBeatSheet{}).Count(&count).Error)
	assert.EqualValues(t, seeded, count)

	dup := &types.MasterBeatSheet{
		Name:          "duplicate",
		BeatSheetType: screenplay.BeatSheetBlakeSnyder,
		NumberOfBeats: 1,
		Template:      []byte(`{"beats":[]}`),
	}
	err = gdb.Create(dup).Error
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestPostgresScriptDeleteCascades(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	r := repos.NewSet(gdb, log)

	script := testutil.SeedScript(t, ctx, gdb, uuid.New(), screenplay.CreationFromScratch)
	sheet := testutil.SeedMasterBeatSheet(t, ctx, gdb, screenplay.BeatSheetStoryCircle, 2, 1)
	testutil.SeedBeat(t, ctx, gdb, script.ID, sheet.ID, 1)
	testutil.SeedBeat(t, ctx, gdb, script.ID, sheet.ID, 2)

	require.NoError(t, r.Script.FullDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{script.ID}))

	var beats int64
	require.NoError(t, gdb.Model(&types.Beat{}).Where("script_id = ?", script.ID).Count(&beats).Error)
	assert.Zero(t, beats)
}
