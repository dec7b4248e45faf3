package lesson

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/changeagent/internal/capture"
	"github.com/abhisek/changeagent/internal/content"
	"github.com/abhisek/changeagent/internal/ui/components"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

type rowKind int

const (
	rowText rowKind = iota
	rowOption
	rowFollowUp
	rowStepText
	rowStepOption
	rowComponent
	rowLink
)

// row is one focusable line group of the page. The first row of an
// exercise (and of a step) also renders its heading.
type row struct {
	kind      rowKind
	field     *capture.Field
	step      *content.Step
	option    string
	first     bool
	stepFirst bool
}

// editable reports whether enter opens the text editor on this row.
func (r row) editable() bool {
	return r.kind == rowText || r.kind == rowFollowUp || r.kind == rowStepText
}

// multiline reports whether the row's editor accepts newlines.
func (r row) multiline() bool {
	switch r.kind {
	case rowText:
		b, _ := r.field.Exercise.Body.(content.TextBody)
		return b.Multiline
	case rowStepText:
		return r.step.Kind == content.StepTextarea
	}
	return true
}

// text returns the row's current free-text value.
func (r row) text() string {
	switch r.kind {
	case rowText:
		return r.field.Text()
	case rowFollowUp:
		return r.field.FollowUp()
	case rowStepText:
		return r.field.StepText(r.step.ID)
	}
	return ""
}

// setText stores an edit and returns the debounced write.
func (r row) setText(s string) (capture.Pending, error) {
	switch r.kind {
	case rowText:
		return r.field.SetText(s)
	case rowFollowUp:
		return r.field.SetFollowUp(s)
	case rowStepText:
		return r.field.SetStepText(r.step.ID, s)
	}
	return capture.Pending{}, capture.ErrWrongKind
}

func (r row) placeholder() string {
	if b, ok := r.field.Exercise.Body.(content.TextBody); ok && b.Placeholder != "" {
		return b.Placeholder
	}
	return "Type your answer…"
}

// buildRows lays out every field of the form.
func buildRows(form *capture.Form) []row {
	var rows []row
	for _, f := range form.Fields {
		start := len(rows)
		switch b := f.Exercise.Body.(type) {
		case content.TextBody:
			rows = append(rows, row{kind: rowText, field: f})
		case content.ChoiceBody:
			for _, opt := range b.Options {
				rows = append(rows, row{kind: rowOption, field: f, option: opt})
			}
			if b.FollowUp != nil {
				rows = append(rows, row{kind: rowFollowUp, field: f})
			}
		case content.StepsBody:
			for i := range b.Steps {
				st := &b.Steps[i]
				switch st.Kind {
				case content.StepRadio, content.StepCheckbox:
					for j, opt := range st.Options {
						rows = append(rows, row{kind: rowStepOption, field: f, step: st, option: opt, stepFirst: j == 0})
					}
				default:
					rows = append(rows, row{kind: rowStepText, field: f, step: st, stepFirst: true})
				}
			}
		case content.ComponentBody:
			rows = append(rows, row{kind: rowComponent, field: f})
		case content.LinkBody:
			rows = append(rows, row{kind: rowLink, field: f})
		}
		if len(rows) > start {
			rows[start].first = true
		}
	}
	return rows
}

// renderRow returns the lines of one row. summary describes component
// rows.
func renderRow(r row, focused bool, editor string, width int, summary string) []string {
	var out []string
	wrap := lipgloss.NewStyle().Width(width)

	if r.first {
		ex := r.field.Exercise
		out = append(out, "", theme.Label.Render(ex.Label))
		if ex.Description != "" {
			out = append(out, strings.Split(wrap.Foreground(theme.TextDim).Render(ex.Description), "\n")...)
		}
		if b, ok := ex.Body.(content.ChoiceBody); ok && b.Multiple {
			out = append(out, theme.Hint.Render("Select all that apply"))
		}
	}
	if r.stepFirst {
		out = append(out, "", theme.Body.Bold(true).Render(r.step.Label))
		if r.step.Description != "" {
			out = append(out, strings.Split(wrap.Foreground(theme.TextDim).Render(r.step.Description), "\n")...)
		}
	}

	switch r.kind {
	case rowText, rowStepText, rowFollowUp:
		if r.kind == rowFollowUp {
			if fu := followUp(r.field.Exercise); fu != nil {
				out = append(out, "", theme.Body.Bold(true).Render(fu.Label))
				if fu.Description != "" {
					out = append(out, strings.Split(wrap.Foreground(theme.TextDim).Render(fu.Description), "\n")...)
				}
			}
		}
		out = append(out, strings.Split(answerBox(r, focused, editor, width), "\n")...)

	case rowOption:
		b := r.field.Exercise.Body.(content.ChoiceBody)
		c := components.Choice{
			Label:    r.option,
			Multiple: b.Multiple,
			Checked:  slices.Contains(r.field.Selected(), r.option),
			Focused:  focused,
		}
		out = append(out, c.View())

	case rowStepOption:
		c := components.Choice{
			Label:    r.option,
			Multiple: r.step.Kind == content.StepCheckbox,
			Checked:  r.field.StepText(r.step.ID) == r.option,
			Focused:  focused,
		}
		out = append(out, c.View())

	case rowComponent:
		label := "  ▸ Open " + summary
		style := theme.Unselected
		if focused {
			style = theme.Selected
		}
		out = append(out, style.Render(label))

	case rowLink:
		b := r.field.Exercise.Body.(content.LinkBody)
		text := b.Text
		if text == "" {
			text = b.URL
		}
		style := lipgloss.NewStyle().Foreground(theme.Secondary).Underline(true)
		prefix := "    "
		if focused {
			prefix = "  ▸ "
		}
		out = append(out, prefix+style.Render(text), theme.Hint.Render("    "+b.URL))
	}
	return out
}

func followUp(ex *content.Exercise) *content.FollowUp {
	if b, ok := ex.Body.(content.ChoiceBody); ok {
		return b.FollowUp
	}
	return nil
}

// answerBox renders a free-text answer, or the live editor while editing.
func answerBox(r row, focused bool, editor string, width int) string {
	card := theme.Card
	if focused {
		card = theme.FocusedCard
	}
	card = card.Width(width)

	if editor != "" {
		return card.Render(editor)
	}
	text := r.text()
	if text == "" {
		return card.Render(theme.Hint.Render(r.placeholder()))
	}
	return card.Render(theme.Body.Render(text))
}

// pageMeta formats "type • duration" for an activity.
func pageMeta(a *content.Activity) string {
	var parts []string
	if a.Type != "" {
		parts = append(parts, strings.ReplaceAll(string(a.Type), "-", " "))
	}
	if a.Duration != "" {
		parts = append(parts, a.Duration)
	}
	return strings.Join(parts, " • ")
}

// pageLabel names a page in the outline.
func pageLabel(l *content.Lesson, sub *content.SubLesson, a *content.Activity) string {
	switch {
	case a != nil && sub != nil:
		return fmt.Sprintf("%s › %s", sub.Title, a.Title)
	case a != nil:
		return a.Title
	case sub != nil:
		return sub.Title
	}
	return l.Title
}
