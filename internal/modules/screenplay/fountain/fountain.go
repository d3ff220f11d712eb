// Package fountain renders components to Fountain-style plain text and parses pasted text back.
package fountain

import (
	"sort"
	"strings"
	"unicode"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
	"github.com/yungbote/screenplay-backend/internal/modules/screenplay/component"
)

// Render formats components in the order given, one block per component separated by a blank line.
func Render(components []*domain.SceneSegmentComponent) string {
	blocks := make([]string, 0, len(components))
	for _, c := range components {
		if c == nil {
			continue
		}
		if b := block(c); b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// RenderScript renders segments by segment_number, each segment's components by position.
func RenderScript(segments []*domain.SceneSegment) string {
	segs := append([]*domain.SceneSegment(nil), segments...)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].SegmentNumber < segs[j].SegmentNumber })
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		comps := make([]*domain.SceneSegmentComponent, 0, len(s.Components))
		for i := range s.Components {
			if !s.Components[i].IsDeleted {
				comps = append(comps, &s.Components[i])
			}
		}
		sort.SliceStable(comps, func(i, j int) bool { return comps[i].Position < comps[j].Position })
		if text := Render(comps); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func block(c *domain.SceneSegmentComponent) string {
	body, err := component.FromRow(c)
	if err != nil {
		return strings.TrimSpace(c.Content)
	}
	switch b := body.(type) {
	case component.Heading:
		return strings.ToUpper(strings.TrimSpace(b.Text))
	case component.Transition:
		return strings.ToUpper(strings.TrimSpace(b.Text))
	case component.Character:
		return strings.ToUpper(strings.TrimSpace(b.Name))
	case component.Dialogue:
		var sb strings.Builder
		if name := strings.TrimSpace(b.Character); name != "" {
			sb.WriteString(strings.ToUpper(name))
			sb.WriteByte('\n')
		}
		if p := strings.Trim(strings.TrimSpace(b.Parenthetical), "()"); p != "" {
			sb.WriteString("(" + p + ")\n")
		}
		sb.WriteString(strings.TrimSpace(b.Line))
		return sb.String()
	case component.Action:
		return strings.TrimSpace(b.Text)
	}
	return strings.TrimSpace(c.Content)
}

// Parse splits pasted screenplay text into components. Positions are left zero; callers assign them.
func Parse(text string) []*domain.SceneSegmentComponent {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []*domain.SceneSegmentComponent

	if len(lines) > 0 && (isUpper(lines[0]) || isTitle(lines[0])) {
		out = append(out, &domain.SceneSegmentComponent{
			ComponentType: domain.ComponentHeading,
			Content:       strings.TrimSpace(lines[0]),
		})
		lines = lines[1:]
	}

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		if isUpper(line) && !strings.Contains(line, ":") {
			var dialogue []string
			j := i + 1
			for ; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if next == "" || isUpper(next) {
					break
				}
				dialogue = append(dialogue, next)
			}
			var paren *string
			if len(dialogue) > 0 && strings.HasPrefix(dialogue[0], "(") && strings.HasSuffix(dialogue[0], ")") {
				p := dialogue[0][1 : len(dialogue[0])-1]
				paren = &p
				dialogue = dialogue[1:]
			}
			if len(dialogue) > 0 {
				name := line
				out = append(out, &domain.SceneSegmentComponent{
					ComponentType: domain.ComponentDialogue,
					Content:       strings.Join(dialogue, "\n"),
					CharacterName: &name,
					Parenthetical: paren,
				})
				i = j
				continue
			}
		}

		if isUpper(line) && strings.HasSuffix(line, "TO:") {
			out = append(out, &domain.SceneSegmentComponent{ComponentType: domain.ComponentTransition, Content: line})
			i++
			continue
		}

		action := []string{line}
		j := i + 1
		for ; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || isUpper(next) || strings.HasSuffix(next, "TO:") || strings.HasPrefix(next, "(") {
				break
			}
			action = append(action, next)
		}
		out = append(out, &domain.SceneSegmentComponent{ComponentType: domain.ComponentAction, Content: strings.Join(action, "\n")})
		i = j
	}
	return out
}

// isUpper is true when s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// isTitle is true when every run of letters starts upper-case and continues lower-case.
func isTitle(s string) bool {
	cased, prevLetter := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLetter {
				return false
			}
			cased, prevLetter = true, true
		case unicode.IsLower(r):
			if !prevLetter {
				return false
			}
			cased, prevLetter = true, true
		default:
			prevLetter = false
		}
	}
	return cased
}
