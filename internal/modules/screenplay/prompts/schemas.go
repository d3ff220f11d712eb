package prompts

import domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"

func EnumSchema(values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func strictObject(props map[string]any) map[string]any {
	req := make([]string, 0, len(props))
	for k := range props {
		req = append(req, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

var str = map[string]any{"type": "string"}

func BeatSheetSchema() map[string]any {
	return strictObject(map[string]any{
		"beats": arrayOf(strictObject(map[string]any{
			"beat_number": map[string]any{"type": "integer"},
			"beat_name":   str,
			"beat_title":  str,
			"description": str,
			"page_length": str,
			"timing":      str,
			"act":         EnumSchema(string(domain.Act1), string(domain.Act2A), string(domain.Act2B), string(domain.Act3)),
		})),
	})
}

func SceneDescriptionsSchema() map[string]any {
	return strictObject(map[string]any{
		"scenes": arrayOf(strictObject(map[string]any{
			"scene_heading":     str,
			"scene_description": str,
		})),
	})
}

// SceneSegmentSchema requires every field; unused character_name / parenthetical come back empty.
func SceneSegmentSchema() map[string]any {
	return strictObject(map[string]any{
		"components": arrayOf(strictObject(map[string]any{
			"component_type": EnumSchema(
				string(domain.ComponentHeading),
				string(domain.ComponentAction),
				string(domain.ComponentDialogue),
				string(domain.ComponentCharacter),
				string(domain.ComponentTransition),
			),
			"content":        str,
			"character_name": str,
			"parenthetical":  str,
		})),
	})
}

// AlternativesSchema is shared by the four transform kinds: one {text, rationale} per theme.
func AlternativesSchema() map[string]any {
	props := map[string]any{}
	for _, th := range domain.Themes {
		props[string(th)] = strictObject(map[string]any{
			"text":      str,
			"rationale": str,
		})
	}
	return strictObject(props)
}
