package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the declared type tag of an exercise.
type Kind string

const (
	KindText          Kind = "text"
	KindTextarea      Kind = "textarea"
	KindRadio         Kind = "radio"
	KindCheckbox      Kind = "checkbox"
	KindMultiStep     Kind = "multi-step"
	KindRadioWithText Kind = "radio-with-text"
	KindComponent     Kind = "component"
	KindLink          Kind = "link"
)

// Exercise is a single prompt with a typed answer. The kind-specific fields
// live in Body, which is one of TextBody, ChoiceBody, StepsBody,
// ComponentBody or LinkBody.
type Exercise struct {
	ID           string
	Label        string
	Description  string
	HelperPrompt string
	Body         Body
}

// Body is the closed set of exercise variants.
type Body interface {
	isBody()
}

// TextBody is a free-text answer.
type TextBody struct {
	Multiline   bool
	Placeholder string
	Default     string
}

// ChoiceBody selects from a fixed option list. Multiple selects checkbox
// semantics; a non-nil FollowUp adds a free-text follow-up answer.
type ChoiceBody struct {
	Options  []string
	Multiple bool
	Defaults []string
	FollowUp *FollowUp
}

// FollowUp describes the free-text part of a radio-with-text exercise.
type FollowUp struct {
	Label       string
	Description string
}

// StepsBody is an ordered list of independently answered steps.
type StepsBody struct {
	Steps []Step
}

// ComponentBody delegates to a registered interactive component.
type ComponentBody struct {
	Component string
}

// LinkBody points the learner at an external resource. It captures nothing.
type LinkBody struct {
	URL  string
	Text string
}

func (TextBody) isBody()      {}
func (ChoiceBody) isBody()    {}
func (StepsBody) isBody()     {}
func (ComponentBody) isBody() {}
func (LinkBody) isBody()      {}

// Kind reports the exercise's type tag.
func (e *Exercise) Kind() Kind {
	switch b := e.Body.(type) {
	case TextBody:
		if b.Multiline {
			return KindTextarea
		}
		return KindText
	case ChoiceBody:
		switch {
		case b.Multiple:
			return KindCheckbox
		case b.FollowUp != nil:
			return KindRadioWithText
		}
		return KindRadio
	case StepsBody:
		return KindMultiStep
	case ComponentBody:
		return KindComponent
	case LinkBody:
		return KindLink
	}
	return ""
}

// StepKind is the input type of a single step.
type StepKind string

const (
	StepText     StepKind = "text"
	StepTextarea StepKind = "textarea"
	StepRadio    StepKind = "radio"
	StepCheckbox StepKind = "checkbox"
)

// Step is one part of a multi-step exercise.
type Step struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Kind        StepKind `yaml:"type"`
	Options     []string `yaml:"options"`
}

type rawExercise struct {
	ID                  string    `yaml:"id"`
	Type                Kind      `yaml:"type"`
	Label               string    `yaml:"label"`
	Description         string    `yaml:"description"`
	HelperPrompt        string    `yaml:"helperPrompt"`
	Placeholder         string    `yaml:"placeholder"`
	Options             []string  `yaml:"options"`
	Answer              yaml.Node `yaml:"answer"`
	FollowUpLabel       string    `yaml:"followUpLabel"`
	FollowUpDescription string    `yaml:"followUpDescription"`
	Steps               []Step    `yaml:"steps"`
	Component           string    `yaml:"component"`
	Link                string    `yaml:"link"`
	LinkText            string    `yaml:"linkText"`
}

// UnmarshalYAML decodes the authored exercise and selects its Body variant
// from the type tag.
func (e *Exercise) UnmarshalYAML(node *yaml.Node) error {
	var raw rawExercise
	if err := node.Decode(&raw); err != nil {
		return err
	}

	defaults, err := decodeDefaults(&raw.Answer)
	if err != nil {
		return fmt.Errorf("exercise %q: answer: %w", raw.ID, err)
	}

	e.ID = raw.ID
	e.Label = raw.Label
	e.Description = raw.Description
	e.HelperPrompt = raw.HelperPrompt

	switch raw.Type {
	case KindText, KindTextarea:
		e.Body = TextBody{
			Multiline:   raw.Type == KindTextarea,
			Placeholder: raw.Placeholder,
			Default:     firstOrEmpty(defaults),
		}
	case KindRadio, KindCheckbox, KindRadioWithText:
		body := ChoiceBody{
			Options:  raw.Options,
			Multiple: raw.Type == KindCheckbox,
			Defaults: defaults,
		}
		if raw.Type == KindRadioWithText {
			body.FollowUp = &FollowUp{Label: raw.FollowUpLabel, Description: raw.FollowUpDescription}
		}
		e.Body = body
	case KindMultiStep:
		steps := make([]Step, len(raw.Steps))
		for i, s := range raw.Steps {
			if s.Kind == "" {
				s.Kind = StepText
			}
			steps[i] = s
		}
		e.Body = StepsBody{Steps: steps}
	case KindComponent:
		e.Body = ComponentBody{Component: raw.Component}
	case KindLink:
		e.Body = LinkBody{URL: raw.Link, Text: raw.LinkText}
	default:
		return fmt.Errorf("exercise %q: unknown type %q (line %d)", raw.ID, raw.Type, node.Line)
	}
	return nil
}

// decodeDefaults accepts an absent answer, a scalar, or a list of scalars.
func decodeDefaults(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := n.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	case yaml.MappingNode:
		// Component defaults ({}) carry no information.
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported answer shape")
	}
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Step returns the step with the given ID.
func (b StepsBody) Step(id string) (Step, bool) {
	for _, s := range b.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
