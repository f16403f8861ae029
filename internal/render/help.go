package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/theme"
)

const (
	helpTitle   = "🤖 Agent Communication Live Viewer"
	projectName = "Adaptive Portfolio Constellation"
)

var helpControls = [][2]string{
	{"SPACE", "Pause/Resume"},
	{"S", "Show stats"},
	{"H", "Show this help"},
	{"Q", "Quit"},
}

// HelpText renders the title, controls and a legend of every roster member
// that has a role, each name in its own color.
func HelpText(reg *roster.Registry, styles theme.Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(helpTitle))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("═", ansi.StringWidth(helpTitle))))
	b.WriteString("\n\nControls:\n")
	for _, c := range helpControls {
		b.WriteString("  ")
		b.WriteString(styles.AccentText.Render(padRight(c[0], 5)))
		b.WriteString(" - ")
		b.WriteString(c[1])
		b.WriteString("\n")
	}

	var legend []roster.Member
	nameWidth := 0
	for _, m := range reg.Members() {
		if m.Role == "" {
			continue
		}
		legend = append(legend, m)
		nameWidth = max(nameWidth, ansi.StringWidth(string(m.ID)))
	}
	if len(legend) > 0 {
		b.WriteString("\nAgent Colors:\n")
		for _, m := range legend {
			name := styles.Text.Foreground(m.Color).Render(string(m.ID))
			b.WriteString("  ")
			b.WriteString(name)
			b.WriteString(strings.Repeat(" ", nameWidth-ansi.StringWidth(string(m.ID))))
			b.WriteString(" - ")
			b.WriteString(m.Role)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nProject: \"" + projectName + "\"\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("━", 46)))
	return b.String()
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
