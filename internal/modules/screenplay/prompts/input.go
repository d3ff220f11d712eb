package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Script
	ScriptTitle string
	Genre       string
	Story       string

	// Beat sheet template
	TemplateName      string
	TemplateBeatsJSON string
	NumberOfBeats     int

	// Beat + template beat
	BeatTitle               string
	BeatDescription         string
	BeatPosition            int
	TemplateBeatName        string
	TemplateBeatDescription string
	NumberOfScenes          int

	// Scene
	SceneHeading     string
	SceneDescription string
	MinWordCount     int
	PreviousHeadings string

	// Component
	ComponentType string
	Content       string
	CharacterName string
	Parenthetical string
}
