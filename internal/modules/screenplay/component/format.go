package component

import (
	"strings"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

var headingPrefixes = []string{"INT./EXT.", "EXT./INT.", "INT.", "EXT."}

var timeOfDay = []string{"DAY", "NIGHT", "MORNING", "EVENING", "AFTERNOON", "DAWN", "DUSK", "LATER", "CONTINUOUS", "SAME TIME"}

// AutoFormat normalizes row in place to standard screenplay casing and punctuation. Rows of an unknown
// type are left alone.
func AutoFormat(row *domain.SceneSegmentComponent) {
	body, err := FromRow(row)
	if err != nil {
		return
	}
	ApplyTo(Format(body), row)
}

// Format returns body with standard casing and punctuation. The parenthetical loses its brackets; the
// renderer adds them back.
func Format(body Body) Body {
	switch b := body.(type) {
	case Heading:
		b.Text = FormatHeading(b.Text)
		return b
	case Dialogue:
		b.Character = strings.ToUpper(strings.TrimSpace(b.Character))
		b.Parenthetical = strings.TrimSpace(strings.ToLower(strings.Trim(strings.TrimSpace(b.Parenthetical), "()")))
		return b
	case Character:
		b.Name = strings.ToUpper(strings.TrimSpace(b.Name))
		return b
	case Transition:
		b.Text = FormatTransition(b.Text)
		return b
	}
	return body
}

// FormatHeading upper-cases a slug line, ensures an INT./EXT. prefix and a time of day.
func FormatHeading(s string) string {
	h := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if h == "" {
		return h
	}
	if !hasHeadingPrefix(h) {
		moved := false
		for _, p := range headingPrefixes {
			if i := strings.Index(h, p); i > 0 {
				rest := strings.TrimSpace(h[:i] + " " + h[i+len(p):])
				h = p + " " + strings.Join(strings.Fields(rest), " ")
				moved = true
				break
			}
		}
		if !moved {
			h = "INT. " + h
		}
	}
	if !hasTimeOfDay(h) {
		h += " - DAY"
	}
	return h
}

// FormatTransition upper-cases t and ensures the trailing "TO:".
func FormatTransition(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" || strings.HasSuffix(t, "TO:") {
		return t
	}
	return strings.TrimSuffix(t, ":") + " TO:"
}

func hasHeadingPrefix(h string) bool {
	for _, p := range headingPrefixes {
		if strings.HasPrefix(h, p) {
			return true
		}
	}
	return false
}

func hasTimeOfDay(h string) bool {
	for _, w := range timeOfDay {
		if strings.Contains(h, w) {
			return true
		}
	}
	return false
}
