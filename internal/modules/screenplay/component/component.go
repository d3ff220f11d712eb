// Package component models a screenplay component as a tagged union over the flat storage row.
package component

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domain "github.com/yungbote/screenplay-backend/internal/domain/screenplay"
)

// Body is one of Heading, Action, Dialogue, Character or Transition.
type Body interface {
	Type() domain.ComponentType
	isBody()
}

type Heading struct{ Text string }
type Action struct{ Text string }
type Dialogue struct {
	Character     string
	Parenthetical string
	Line          string
}
type Character struct{ Name string }
type Transition struct{ Text string }

func (Heading) Type() domain.ComponentType    { return domain.ComponentHeading }
func (Action) Type() domain.ComponentType     { return domain.ComponentAction }
func (Dialogue) Type() domain.ComponentType   { return domain.ComponentDialogue }
func (Character) Type() domain.ComponentType  { return domain.ComponentCharacter }
func (Transition) Type() domain.ComponentType { return domain.ComponentTransition }

func (Heading) isBody()    {}
func (Action) isBody()     {}
func (Dialogue) isBody()   {}
func (Character) isBody()  {}
func (Transition) isBody() {}

// FromRow reads the variant stored in a component row.
func FromRow(row *domain.SceneSegmentComponent) (Body, error) {
	if row == nil {
		return nil, fmt.Errorf("nil component row")
	}
	switch row.ComponentType {
	case domain.ComponentHeading:
		return Heading{Text: row.Content}, nil
	case domain.ComponentAction:
		return Action{Text: row.Content}, nil
	case domain.ComponentDialogue:
		return Dialogue{Character: deref(row.CharacterName), Parenthetical: deref(row.Parenthetical), Line: row.Content}, nil
	case domain.ComponentCharacter:
		name := deref(row.CharacterName)
		if name == "" {
			name = row.Content
		}
		return Character{Name: name}, nil
	case domain.ComponentTransition:
		return Transition{Text: row.Content}, nil
	default:
		return nil, fmt.Errorf("unknown component type %q", row.ComponentType)
	}
}

// ApplyTo writes body into row, clearing fields the variant does not carry.
func ApplyTo(body Body, row *domain.SceneSegmentComponent) {
	row.ComponentType = body.Type()
	row.CharacterName = nil
	row.Parenthetical = nil
	switch b := body.(type) {
	case Heading:
		row.Content = b.Text
	case Action:
		row.Content = b.Text
	case Dialogue:
		row.Content = b.Line
		row.CharacterName = ptrOrNil(b.Character)
		row.Parenthetical = ptrOrNil(b.Parenthetical)
	case Character:
		row.Content = b.Name
		row.CharacterName = ptrOrNil(b.Name)
	case Transition:
		row.Content = b.Text
	}
}

// Transformable reports whether shorten, rewrite, expand and continue may run on body.
func Transformable(body Body) bool {
	switch body.(type) {
	case Action, Dialogue:
		return true
	}
	return false
}

// Input is the wire shape for creating or replacing a component.
type Input struct {
	ComponentType domain.ComponentType `json:"component_type" validate:"required,component_type"`
	Position      float64              `json:"position"`
	Content       string               `json:"content"`
	CharacterName *string              `json:"character_name,omitempty"`
	Parenthetical *string              `json:"parenthetical,omitempty"`
}

// IsPseudoParenthetical reports the editor-only PARENTHETICAL line type.
func (in Input) IsPseudoParenthetical() bool {
	return in.ComponentType == domain.ComponentParenthetical
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("component_type", func(fl validator.FieldLevel) bool {
		return domain.ComponentType(fl.Field().String()).Stored()
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(Input)
		switch in.ComponentType {
		case domain.ComponentDialogue:
			if strings.TrimSpace(deref(in.CharacterName)) == "" {
				sl.ReportError(in.CharacterName, "character_name", "CharacterName", "required_for_dialogue", "")
			}
		case domain.ComponentCharacter:
			if in.Parenthetical != nil {
				sl.ReportError(in.Parenthetical, "parenthetical", "Parenthetical", "dialogue_only", "")
			}
		default:
			if in.CharacterName != nil {
				sl.ReportError(in.CharacterName, "character_name", "CharacterName", "dialogue_or_character_only", "")
			}
			if in.Parenthetical != nil {
				sl.ReportError(in.Parenthetical, "parenthetical", "Parenthetical", "dialogue_only", "")
			}
		}
	}, Input{})
	return v
}

// Validate enforces the per-type field rules at the input boundary.
func (in Input) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			switch fe.Tag() {
			case "component_type", "required":
				return fmt.Errorf("invalid component_type %q", in.ComponentType)
			case "required_for_dialogue":
				return fmt.Errorf("character_name is required for DIALOGUE")
			case "dialogue_only":
				return fmt.Errorf("parenthetical is only allowed on DIALOGUE")
			case "dialogue_or_character_only":
				return fmt.Errorf("character_name is only allowed on DIALOGUE or CHARACTER")
			}
		}
		return err
	}
	return nil
}

// Body reads the variant an input describes. It returns nil for types that are never stored.
func (in Input) Body() Body {
	switch in.ComponentType {
	case domain.ComponentHeading:
		return Heading{Text: in.Content}
	case domain.ComponentAction:
		return Action{Text: in.Content}
	case domain.ComponentDialogue:
		return Dialogue{
			Character:     strings.TrimSpace(deref(in.CharacterName)),
			Parenthetical: strings.TrimSpace(deref(in.Parenthetical)),
			Line:          in.Content,
		}
	case domain.ComponentCharacter:
		name := strings.TrimSpace(deref(in.CharacterName))
		if name == "" {
			name = in.Content
		}
		return Character{Name: name}
	case domain.ComponentTransition:
		return Transition{Text: in.Content}
	}
	return nil
}

// Row builds a storage row for segmentID from a validated input.
func (in Input) Row(segmentID uuid.UUID) *domain.SceneSegmentComponent {
	row := &domain.SceneSegmentComponent{
		SceneSegmentID: segmentID,
		ComponentType:  in.ComponentType,
		Position:       in.Position,
		Content:        in.Content,
	}
	if body := in.Body(); body != nil {
		ApplyTo(body, row)
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
