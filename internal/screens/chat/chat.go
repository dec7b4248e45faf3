// Package chat is the chat helper screen.
package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	helper "github.com/abhisek/changeagent/internal/chat"
	"github.com/abhisek/changeagent/internal/platform/logger"
	"github.com/abhisek/changeagent/internal/screen"
	"github.com/abhisek/changeagent/internal/ui/components"
	"github.com/abhisek/changeagent/internal/ui/layout"
	"github.com/abhisek/changeagent/internal/ui/theme"
)

// Intro is shown before the first message.
const Intro = "Ask anything about change management, AI adoption or the course material."

// Unconfigured is shown when no LLM provider is set up.
const Unconfigured = "No LLM provider is configured. Set OPENROUTER_KEY (or another provider key) to enable the chat helper."

// sendTimeout bounds a single chat turn.
const sendTimeout = 90 * time.Second

type replyMsg struct {
	err error
}

type savedMsg struct {
	path string
	err  error
}

// ChatScreen shows the conversation and an input line.
type ChatScreen struct {
	svc   *helper.Service
	input components.TextInput
	dir   string
	now   func() time.Time
	log   *logger.Logger

	scroll int // lines scrolled up from the bottom
	status string
}

var _ screen.Screen = (*ChatScreen)(nil)

// New creates a chat screen. Transcripts are saved into dir.
func New(svc *helper.Service, dir string, now func() time.Time, log *logger.Logger) *ChatScreen {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ChatScreen{
		svc:   svc,
		input: components.NewTextInput("Type a question and press Enter", 2000),
		dir:   dir,
		now:   now,
		log:   log,
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	return "Chat Helper"
}

// KeyHints returns the key binding hints for the footer.
func (c *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Ctrl+Y", Description: "Copy reply"},
		{Key: "Ctrl+S", Description: "Save"},
		{Key: "Ctrl+L", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		c.input.SetBusy(false)
		c.scroll = 0
		if msg.err != nil {
			c.status = "The assistant could not answer. Try again in a moment."
		}
		return c, nil

	case savedMsg:
		if msg.err != nil {
			c.log.Error("save transcript failed", "error", msg.err)
			c.status = "Could not save: " + msg.err.Error()
		} else {
			c.status = "Saved " + msg.path
		}
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c, c.send()
		case "ctrl+l":
			if c.input.Busy() {
				return c, nil
			}
			if err := c.svc.Clear(context.Background()); err != nil {
				c.status = "Could not clear: " + err.Error()
			} else {
				c.status = "Conversation cleared."
			}
			c.scroll = 0
			return c, nil
		case "ctrl+y":
			return c, c.copyReply()
		case "ctrl+s":
			return c, c.save()
		case "pgup":
			c.scroll += 5
			return c, nil
		case "pgdown":
			c.scroll -= 5
			if c.scroll < 0 {
				c.scroll = 0
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) send() tea.Cmd {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.input.Busy() {
		return nil
	}
	c.input.Reset()
	c.input.SetBusy(true)
	c.status = ""

	svc := c.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		_, err := svc.Send(ctx, text)
		return replyMsg{err: err}
	}
}

// copyReply puts the latest assistant message on the system clipboard.
// Terminals without OSC52 support ignore the request.
func (c *ChatScreen) copyReply() tea.Cmd {
	msgs := c.svc.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == helper.RoleAssistant {
			c.status = "Copied the last reply."
			return tea.SetClipboard(msgs[i].Content)
		}
	}
	c.log.Warn("copy to clipboard failed", "error", "no assistant reply yet")
	c.status = "Nothing to copy yet."
	return nil
}

func (c *ChatScreen) save() tea.Cmd {
	name, text, ok := c.svc.Transcript(c.now())
	if !ok {
		c.status = "Nothing to save yet."
		return nil
	}
	path := filepath.Join(c.dir, name)
	return func() tea.Msg {
		err := os.WriteFile(path, []byte(text), 0o644)
		return savedMsg{path: path, err: err}
	}
}

func (c *ChatScreen) View(width, height int) string {
	cw := layout.ReadingWidth(width)
	c.input.SetWidth(cw - 4)

	var lines []string
	if !c.svc.Available() {
		lines = append(lines, strings.Split(lipgloss.NewStyle().Width(cw).Foreground(theme.Accent).Render(Unconfigured), "\n")...)
		lines = append(lines, "")
	}
	msgs := c.svc.Messages()
	if len(msgs) == 0 {
		lines = append(lines, theme.Hint.Render(Intro))
	}
	bubble := lipgloss.NewStyle().Width(cw - 2).PaddingLeft(2)
	for _, m := range msgs {
		who := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Assistant")
		if m.Role == helper.RoleUser {
			who = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("You")
		}
		who += theme.Hint.Render("  " + m.Timestamp.Local().Format("15:04"))
		lines = append(lines, who)
		lines = append(lines, strings.Split(bubble.Foreground(theme.Text).Render(m.Content), "\n")...)
		lines = append(lines, "")
	}
	if c.svc.Pending() || c.input.Busy() {
		lines = append(lines, theme.Hint.Render("Assistant is thinking…"))
	}

	footer := []string{theme.Warning.Render(c.status), theme.FocusedCard.Width(cw).Render(c.input.View())}
	footerHeight := lipgloss.Height(strings.Join(footer, "\n"))
	bodyHeight := height - footerHeight
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	// Anchor to the bottom, scrolled up by c.scroll lines.
	maxScroll := len(lines) - bodyHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if c.scroll > maxScroll {
		c.scroll = maxScroll
	}
	end := len(lines) - c.scroll
	start := end - bodyHeight
	if start < 0 {
		start = 0
	}
	visible := append([]string{}, lines[start:end]...)
	for len(visible) < bodyHeight {
		visible = append([]string{""}, visible...)
	}

	body := strings.Join(append(visible, footer...), "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(cw).Render(body))
}
