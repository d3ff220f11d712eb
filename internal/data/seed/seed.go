// Package seed loads the built-in master beat sheet templates.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/screenplay-backend/internal/domain"
	"github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

//go:embed beat_sheets.yaml
var beatSheetsYAML []byte

type sheetDoc struct {
	Type        screenplay.BeatSheetType  `yaml:"type"`
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Beats       []screenplay.TemplateBeat `yaml:"beats"`
}

// MasterBeatSheets parses the embedded templates into rows ready for upsert.
func MasterBeatSheets() ([]*types.MasterBeatSheet, error) {
	var docs []sheetDoc
	if err := yaml.Unmarshal(beatSheetsYAML, &docs); err != nil {
		return nil, fmt.Errorf("parse beat sheet templates: %w", err)
	}
	out := make([]*types.MasterBeatSheet, 0, len(docs))
	seen := map[screenplay.BeatSheetType]bool{}
	for _, d := range docs {
		if seen[d.Type] {
			return nil, fmt.Errorf("duplicate beat sheet type %s", d.Type)
		}
		seen[d.Type] = true
		for i, b := range d.Beats {
			if b.Position != i+1 {
				return nil, fmt.Errorf("%s: beat %q has position %d, want %d", d.Type, b.Name, b.Position, i+1)
			}
		}
		raw, err := json.Marshal(screenplay.BeatTemplate{Beats: d.Beats})
		if err != nil {
			return nil, err
		}
		out = append(out, &types.MasterBeatSheet{
			Name:          d.Name,
			BeatSheetType: d.Type,
			Description:   d.Description,
			NumberOfBeats: len(d.Beats),
			Template:      raw,
		})
	}
	return out, nil
}

type Upserter interface {
	Upsert(dbc dbctx.Context, rows []*types.MasterBeatSheet) error
}

// Templates upserts the built-in templates and returns how many were written.
func Templates(dbc dbctx.Context, repo Upserter, log *logger.Logger) (int, error) {
	rows, err := MasterBeatSheets()
	if err != nil {
		return 0, err
	}
	if err := repo.Upsert(dbc, rows); err != nil {
		return 0, fmt.Errorf("upsert master beat sheets: %w", err)
	}
	log.Info("Seeded master beat sheets", "count", len(rows))
	return len(rows), nil
}
