// Package beatsheet turns generated beat sheets into persisted beats.
package beatsheet

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/position"
)

// GeneratedBeat is one beat as returned by the generation capability.
type GeneratedBeat struct {
	BeatNumber  int    `json:"beat_number"`
	BeatName    string `json:"beat_name"`
	BeatTitle   string `json:"beat_title"`
	Description string `json:"description"`
	PageLength  string `json:"page_length,omitempty"`
	Timing      string `json:"timing,omitempty"`
	Act         string `json:"act"`
}

// Sheet is the full generated document; it is stored verbatim on the first beat.
type Sheet struct {
	Beats []GeneratedBeat `json:"beats"`
}

// ToBeats maps generated beats onto rows for scriptID, positions 1..n in generation order. Titles are made
// unique within the script and acts fall back to the template, then to a position-derived act.
func ToBeats(scriptID uuid.UUID, sheet *domain.MasterBeatSheet, generated []GeneratedBeat) ([]*domain.Beat, error) {
	if sheet == nil {
		return nil, fmt.Errorf("nil master beat sheet")
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("no beats generated")
	}
	tmpl, err := sheet.DecodeTemplate()
	if err != nil {
		return nil, err
	}
	seen := map[string]int{}
	out := make([]*domain.Beat, 0, len(generated))
	positions := position.BeatPositions(len(generated))
	for i, g := range generated {
		pos := positions[i]
		title := strings.TrimSpace(g.BeatTitle)
		if title == "" {
			title = strings.TrimSpace(g.BeatName)
		}
		if title == "" {
			title = fmt.Sprintf("Beat %d", pos)
		}
		key := strings.ToLower(title)
		if n := seen[key]; n > 0 {
			title = fmt.Sprintf("%s (%d)", title, n+1)
		}
		seen[key]++

		out = append(out, &domain.Beat{
			ScriptID:          scriptID,
			MasterBeatSheetID: sheet.ID,
			Position:          pos,
			BeatTitle:         title,
			BeatDescription:   strings.TrimSpace(g.Description),
			BeatAct:           actFor(g.Act, pos, len(generated), tmpl),
		})
	}
	return out, nil
}

func actFor(raw string, pos, total int, tmpl domain.BeatTemplate) domain.BeatAct {
	if a := NormalizeAct(raw); a.Valid() {
		return a
	}
	for _, tb := range tmpl.Beats {
		if tb.Position == pos && tb.Act.Valid() {
			return tb.Act
		}
	}
	switch q := float64(pos) / float64(total); {
	case q <= 0.25:
		return domain.Act1
	case q <= 0.5:
		return domain.Act2A
	case q <= 0.75:
		return domain.Act2B
	default:
		return domain.Act3
	}
}

// NormalizeAct accepts the stored spelling as well as loose forms like "Act 2A" or "act2b".
func NormalizeAct(raw string) domain.BeatAct {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	switch s {
	case "act1", "1", "acti":
		return domain.Act1
	case "act2a", "2a", "act2", "actiia":
		return domain.Act2A
	case "act2b", "2b", "actiib":
		return domain.Act2B
	case "act3", "3", "actiii":
		return domain.Act3
	}
	return domain.BeatAct(raw)
}
