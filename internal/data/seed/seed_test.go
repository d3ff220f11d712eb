package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/screenplay-backend/internal/data/repos/screenplay"
	"github.com/yungbote/screenplay-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
)

func TestMasterBeatSheetsParse(t *testing.T) {
	rows, err := MasterBeatSheets()
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for _, row := range rows {
		tmpl, err := row.DecodeTemplate()
		require.NoError(t, err)
		assert.Equal(t, row.NumberOfBeats, len(tmpl.Beats), row.BeatSheetType)
		for _, b := range tmpl.Beats {
			assert.True(t, b.Act.Valid(), "%s/%s act", row.BeatSheetType, b.Name)
			assert.Positive(t, b.NumberOfScenes)
		}
	}
	assert.Equal(t, domain.BeatSheetBlakeSnyder, rows[0].BeatSheetType)
	assert.Equal(t, 15, rows[0].NumberOfBeats)
}

func TestTemplatesIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := screenplay.NewMasterBeatSheetRepo(db, testutil.Logger(t))

	n, err := Templates(dbc, repo, testutil.Logger(t))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = Templates(dbc, repo, testutil.Logger(t))
	require.NoError(t, err)

	all, err := repo.List(dbc)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	bs, err := repo.GetByType(dbc, domain.BeatSheetBlakeSnyder)
	require.NoError(t, err)
	require.NotNil(t, bs)
	tb, err := bs.TemplateBeatAt(4)
	require.NoError(t, err)
	require.NotNil(t, tb)
	assert.Equal(t, "Catalyst", tb.Name)
}
