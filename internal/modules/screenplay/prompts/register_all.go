package prompts

import (
	"fmt"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

const beatSheetSystem = `
You are a veteran story editor who outlines feature films with established beat sheet structures.
Follow the requested structure exactly: one beat per template beat, in template order.
Every beat gets a specific, story-grounded title (unique within the sheet) and a 2-4 sentence description.
act is one of act_1, act_2a, act_2b, act_3.`

const beatSheetUser = `
TITLE: {{.ScriptTitle}}
GENRE: {{.Genre}}
STORY:
{{.Story}}

STRUCTURE: {{.TemplateName}} ({{.NumberOfBeats}} beats)
TEMPLATE BEATS (JSON):
{{.TemplateBeatsJSON}}

Write the beat sheet for this story.`

var transformVerbs = map[PromptName]string{
	PromptShorten:  "Shorten the text while keeping its meaning and the writer's voice.",
	PromptRewrite:  "Rewrite the text at roughly the same length with fresher wording.",
	PromptExpand:   "Expand the text with concrete, filmable detail; roughly double the length.",
	PromptContinue: "Write what comes immediately after the text. Return only the new continuation, not the original.",
}

func RegisterAll() {
	// ---------- Beat sheets ----------

	RegisterSpec(Spec{
		Name:       PromptBeatSheet,
		Version:    1,
		SchemaName: "beat_sheet",
		Schema:     BeatSheetSchema,
		System:     beatSheetSystem + "\nReturn JSON only.",
		User:       beatSheetUser,
		Validators: []Validator{
			RequireNonEmpty("Story", func(in Input) string { return in.Story }),
			RequireNonEmpty("TemplateBeatsJSON", func(in Input) string { return in.TemplateBeatsJSON }),
		},
	})

	RegisterSpec(Spec{
		Name:    PromptBeatSheetStream,
		Version: 1,
		System: beatSheetSystem + `
Respond with a single JSON object {"beats":[...]} and nothing else. Each beat has beat_number, beat_name,
beat_title, description, page_length, timing and act.`,
		User: beatSheetUser,
		Validators: []Validator{
			RequireNonEmpty("Story", func(in Input) string { return in.Story }),
		},
	})

	// ---------- Scenes ----------

	RegisterSpec(Spec{
		Name:       PromptSceneDescriptions,
		Version:    1,
		SchemaName: "scene_descriptions",
		Schema:     SceneDescriptionsSchema,
		System: `
You break a single story beat into scenes for a feature screenplay.
Each scene has a short scene_heading label and a one-sentence scene_description.
Scenes must advance the beat in order and must not repeat earlier scenes.
Do not use ":" inside scene_heading.
Return JSON only.`,
		User: `
TITLE: {{.ScriptTitle}}
GENRE: {{.Genre}}
STORY:
{{.Story}}

BEAT {{.BeatPosition}}: {{.BeatTitle}}
{{.BeatDescription}}

TEMPLATE BEAT: {{.TemplateBeatName}}
{{.TemplateBeatDescription}}

EARLIER SCENE HEADINGS:
{{.PreviousHeadings}}

Write exactly {{.NumberOfScenes}} scenes for this beat.`,
		Validators: []Validator{
			RequireNonEmpty("BeatTitle", func(in Input) string { return in.BeatTitle }),
			RequirePositive("NumberOfScenes", func(in Input) int { return in.NumberOfScenes }),
			RequireAtMost("NumberOfScenes", MaxScenesPerRequest, func(in Input) int { return in.NumberOfScenes }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptSceneSegment,
		Version:    1,
		SchemaName: "scene_segment",
		Schema:     SceneSegmentSchema,
		System: `
You are a professional screenwriter writing one scene in standard screenplay form.
Output an ordered list of components. Start with a HEADING (INT./EXT. LOCATION - TIME).
Use ACTION for description, DIALOGUE for spoken lines (character_name required, parenthetical optional and
without brackets), CHARACTER only for a bare cue, TRANSITION only at the end when needed.
Leave character_name and parenthetical empty on components that do not use them.
Return JSON only.`,
		User: `
TITLE: {{.ScriptTitle}}
GENRE: {{.Genre}}
STORY:
{{.Story}}

BEAT {{.BeatPosition}}: {{.BeatTitle}}
{{.BeatDescription}}
TEMPLATE BEAT: {{.TemplateBeatName}}: {{.TemplateBeatDescription}}

SCENE: {{.SceneHeading}}
{{.SceneDescription}}

EARLIER SCENE HEADINGS (for continuity):
{{.PreviousHeadings}}

Write at least {{.MinWordCount}} words.`,
		Validators: []Validator{
			RequireNonEmpty("SceneHeading", func(in Input) string { return in.SceneHeading }),
		},
	})

	// ---------- Component transforms ----------

	for name, verb := range transformVerbs {
		RegisterSpec(Spec{
			Name:       name,
			Version:    1,
			SchemaName: "component_alternatives",
			Schema:     AlternativesSchema,
			System: `
You are a screenplay script doctor. ` + verb + `
Produce exactly five alternatives, one per theme: concise, dramatic, minimal, poetic, humorous.
Each has the new text and a one-line rationale. Keep screenplay conventions; no character cues inside text.
Return JSON only.`,
			User: `
TITLE: {{.ScriptTitle}}
GENRE: {{.Genre}}
COMPONENT TYPE: {{.ComponentType}}
{{if .CharacterName}}CHARACTER: {{.CharacterName}}
{{end}}{{if .Parenthetical}}MOOD: {{.Parenthetical}}
{{end}}
TEXT:
{{.Content}}`,
			Validators: []Validator{
				RequireNonEmpty("Content", func(in Input) string { return in.Content }),
			},
		})
	}
}

// ForTransform maps a transform kind to its prompt.
func ForTransform(kind domain.TransformKind) (PromptName, error) {
	switch kind {
	case domain.TransformShorten:
		return PromptShorten, nil
	case domain.TransformRewrite:
		return PromptRewrite, nil
	case domain.TransformExpand:
		return PromptExpand, nil
	case domain.TransformContinue:
		return PromptContinue, nil
	}
	return "", fmt.Errorf("unknown transform kind %q", kind)
}
