package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/logparse"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/scrollback"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/theme"
)

// DefaultWidth is the content width, in terminal cells, used when none is
// configured.
const DefaultWidth = 120

const ellipsis = "..."

// Options configure a Sink.
type Options struct {
	Width      int
	Scrollback int
	Renderer   *lipgloss.Renderer
	Theme      theme.Theme
	// Out, when set, receives every unit as it is appended.
	Out io.Writer
}

// Sink formats events into display units and keeps the most recent ones.
// It is owned by a single goroutine and is not safe for concurrent use.
type Sink struct {
	reg     *roster.Registry
	r       *lipgloss.Renderer
	styles  theme.Styles
	width   int
	ring    *scrollback.Ring
	out     io.Writer
	outErr  error
	version uint64
}

// New returns a Sink that colors agents using reg.
func New(reg *roster.Registry, opts Options) *Sink {
	if reg == nil {
		reg = roster.Default()
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	if opts.Theme.Name == "" {
		opts.Theme, _ = theme.Get(theme.Default)
	}
	return &Sink{
		reg:    reg,
		r:      opts.Renderer,
		styles: opts.Theme.Styles(opts.Renderer),
		width:  opts.Width,
		ring:   scrollback.New(opts.Scrollback),
		out:    opts.Out,
	}
}

// Render appends the formatted event unless paused. Events offered while
// paused are dropped, not queued. It reports whether a unit was appended.
func (s *Sink) Render(ev logparse.Event, paused bool) bool {
	if paused || ev == nil {
		return false
	}
	switch e := ev.(type) {
	case logparse.ConversationEvent:
		s.push(s.formatConversation(e))
	case logparse.StatusEvent:
		s.push(s.formatStatus(e))
	default:
		return false
	}
	return true
}

// RenderError shows a secondary-stream line as an error notice unless paused
// or blank.
func (s *Sink) RenderError(text string, paused bool) bool {
	if paused || strings.TrimSpace(text) == "" {
		return false
	}
	s.push(s.styles.DangerText.Render("Error:") + " " + ansi.Strip(text))
	return true
}

// Notice appends an operator-facing message. Notices ignore the pause gate.
func (s *Sink) Notice(text string) {
	s.push(s.styles.InfoText.Render(text))
}

// Warn appends a notice in the warning color.
func (s *Sink) Warn(text string) {
	s.push(s.styles.WarningText.Render(text))
}

// Stats appends the stats line for snap. With withUnmatched the count of
// unrecognised lines is included.
func (s *Sink) Stats(snap stats.Snapshot, withUnmatched bool) {
	line := "📊 " + snap.String()
	if withUnmatched {
		line += fmt.Sprintf(" | %d unmatched", snap.Unmatched)
	}
	s.push(s.styles.AccentText.Render(line))
}

// Help clears the view and shows the controls and the agent legend.
func (s *Sink) Help() {
	s.Clear()
	s.push(HelpText(s.reg, s.styles))
}

// Clear drops every retained unit.
func (s *Sink) Clear() {
	s.ring.Clear()
	s.version++
}

// Lines returns the retained units, oldest first. A unit may span several
// terminal lines.
func (s *Sink) Lines() []string {
	return s.ring.Lines()
}

// Content joins the retained units for display.
func (s *Sink) Content() string {
	return strings.Join(s.ring.Lines(), "\n")
}

// Version changes whenever the retained units change.
func (s *Sink) Version() uint64 {
	return s.version
}

// Styles exposes the theme styles the sink renders with.
func (s *Sink) Styles() theme.Styles {
	return s.styles
}

// Err reports the first error writing to Out, if any.
func (s *Sink) Err() error {
	return s.outErr
}

func (s *Sink) push(unit string) {
	s.ring.Push(unit)
	s.version++
	if s.out == nil || s.outErr != nil {
		return
	}
	if _, err := fmt.Fprintln(s.out, unit); err != nil {
		s.outErr = err
	}
}

func (s *Sink) agent(id roster.ID) string {
	return s.r.NewStyle().Foreground(s.reg.ColorFor(id)).Render(ansi.Strip(string(id)))
}

func (s *Sink) formatConversation(e logparse.ConversationEvent) string {
	var b strings.Builder
	b.WriteString(s.agent(e.From))
	b.WriteString(" → ")
	b.WriteString(s.agent(e.To))
	b.WriteString(" ")
	b.WriteString(s.styles.MutedText.Render("[" + ansi.Strip(e.MessageType) + "]"))
	b.WriteString("\n  💬 ")
	b.WriteString(TruncateContent(ansi.Strip(e.Content), s.width))
	return b.String()
}

// Producer text is stripped of escape sequences so it cannot restyle the
// view or move the cursor.
func (s *Sink) formatStatus(e logparse.StatusEvent) string {
	status := ansi.Strip(e.Status)
	if !e.Attributed() {
		return s.r.NewStyle().Foreground(roster.FallbackColor).Render("⚡ " + status)
	}
	color := s.reg.ColorFor(e.Agent)
	return s.r.NewStyle().Foreground(color).Render("⚡ "+ansi.Strip(string(e.Agent))) + ": " + status
}

// TruncateContent shortens content to width terminal cells and appends an
// ellipsis when anything was cut. Width is measured in display cells, so
// wide characters and escape sequences are handled.
func TruncateContent(content string, width int) string {
	if width <= 0 || ansi.StringWidth(content) <= width {
		return content
	}
	return ansi.Truncate(content, width, "") + ellipsis
}
