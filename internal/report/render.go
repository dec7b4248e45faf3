package report

import (
	"fmt"
	"io"
	"strings"
)

// Text renders the report as plain text.
func (r *Report) Text() string {
	var sb strings.Builder
	_ = r.Render(&sb)
	return sb.String()
}

// Render writes the plain-text report to w.
func (r *Report) Render(w io.Writer) error {
	p := &printer{w: w}
	p.line(r.Title)
	p.line(r.Subtitle)
	p.line(r.Date)
	p.line(fmt.Sprintf("Overall progress: %d%%", r.Overall))
	p.line("")

	for _, l := range r.Lessons {
		badge := fmt.Sprintf("%d/%d Complete", l.Completed, l.Total)
		if l.Complete() {
			badge = "✓ " + badge
		}
		heading := fmt.Sprintf("Lesson %d: %s", l.ID, l.Title)
		p.line(heading + "  [" + badge + "]")
		p.line(strings.Repeat("=", len([]rune(heading))))
		p.line("")

		for _, s := range l.Sections {
			title := s.Number + " " + s.Title
			if s.Complete {
				title += "  [Complete]"
			}
			if s.Heading {
				p.line("## " + title)
			} else {
				p.line("  " + title)
			}
			if s.Meta != "" {
				p.line("  " + s.Meta)
			}
			for _, e := range s.Exercises {
				p.line(fmt.Sprintf("    %d. %s", e.Index, e.Label))
				for _, a := range e.Answer {
					for _, ln := range strings.Split(a, "\n") {
						p.line("       " + ln)
					}
				}
				if e.FollowUp != "" {
					p.line("       Follow-up: " + e.FollowUp)
				}
			}
			p.line("")
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.TrimRight(s, " ")+"\n")
}
