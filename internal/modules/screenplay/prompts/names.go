package prompts

type PromptName string

const (
	// Beat sheets
	PromptBeatSheet       PromptName = "beat_sheet"
	PromptBeatSheetStream PromptName = "beat_sheet_stream"

	// Scenes
	PromptSceneDescriptions PromptName = "scene_descriptions"
	PromptSceneSegment      PromptName = "scene_segment"

	// Component transforms
	PromptShorten  PromptName = "component_shorten"
	PromptRewrite  PromptName = "component_rewrite"
	PromptExpand   PromptName = "component_expand"
	PromptContinue PromptName = "component_continue"
)
