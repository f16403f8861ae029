package render

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/logparse"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
)

func newRenderer(profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	return r
}

func plainSink(opts Options) *Sink {
	opts.Renderer = newRenderer(termenv.Ascii)
	return New(roster.Default(), opts)
}

func TestRenderConversation(t *testing.T) {
	s := plainSink(Options{})
	ev, _ := logparse.Parse("CONVERSATION LOG: [12:00:00] Builder -> Synthesizer (COORDINATION): Ready")

	if !s.Render(ev, false) {
		t.Fatalf("Render returned false for a conversation event")
	}
	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("Lines() = %q, want one unit", lines)
	}
	want := "Builder → Synthesizer [COORDINATION]\n  💬 Ready"
	if lines[0] != want {
		t.Fatalf("unit = %q, want %q", lines[0], want)
	}
}

func TestRenderColorsAgents(t *testing.T) {
	s := New(roster.Default(), Options{Renderer: newRenderer(termenv.ANSI)})
	s.Render(logparse.ConversationEvent{From: "Builder", To: "Stranger", MessageType: "PING", Content: "hi"}, false)

	unit := s.Lines()[0]
	if !strings.Contains(unit, "\x1b[36mBuilder") {
		t.Fatalf("Builder should be cyan, got %q", unit)
	}
	if !strings.Contains(unit, "\x1b[37mStranger") {
		t.Fatalf("unknown agent should use the fallback color, got %q", unit)
	}
	if got := ansi.Strip(unit); got != "Builder → Stranger [PING]\n  💬 hi" {
		t.Fatalf("stripped unit = %q", got)
	}
}

func TestRenderStatus(t *testing.T) {
	tests := []struct {
		name string
		ev   logparse.StatusEvent
		want string
	}{
		{"attributed", logparse.StatusEvent{Agent: "Catalyst", Status: "Prototype complete!"}, "⚡ Catalyst: Prototype complete!"},
		{"unattributed", logparse.StatusEvent{Status: "all systems nominal"}, "⚡ all systems nominal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := plainSink(Options{})
			if !s.Render(tt.ev, false) {
				t.Fatalf("Render returned false")
			}
			if got := s.Lines()[0]; got != tt.want {
				t.Fatalf("unit = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderWhilePausedDrops(t *testing.T) {
	s := plainSink(Options{})
	before := s.Version()

	for i := 0; i < 5; i++ {
		if s.Render(logparse.ConversationEvent{From: "A", To: "B", MessageType: "X", Content: "c"}, true) {
			t.Fatalf("Render while paused returned true")
		}
	}
	if s.RenderError("boom", true) {
		t.Fatalf("RenderError while paused returned true")
	}
	if n := len(s.Lines()); n != 0 {
		t.Fatalf("paused sink retained %d units", n)
	}
	if s.Version() != before {
		t.Fatalf("Version changed while paused")
	}

	s.Notice("⏸️  PAUSED")
	if got := s.Lines(); len(got) != 1 || got[0] != "⏸️  PAUSED" {
		t.Fatalf("notice should bypass pause, got %q", got)
	}
}

func TestRenderError(t *testing.T) {
	s := plainSink(Options{})
	if s.RenderError("   ", false) {
		t.Fatalf("blank secondary line should be skipped")
	}
	if !s.RenderError("TypeError: x is undefined", false) {
		t.Fatalf("RenderError returned false")
	}
	if got := s.Lines()[0]; got != "Error: TypeError: x is undefined" {
		t.Fatalf("unit = %q", got)
	}
}

func TestRenderStripsProducerEscapes(t *testing.T) {
	s := plainSink(Options{})

	s.Render(logparse.ConversationEvent{
		From:        "Builder",
		To:          "Synthesizer",
		MessageType: "\x1b[5mSYNC",
		Content:     "\x1b[2J\x1b[Hwiped \x1b[31mred\x1b[0m",
	}, false)
	s.Render(logparse.StatusEvent{Agent: "Catalyst", Status: "\x1b[1Adone"}, false)
	s.RenderError("\x1b[31mboom\x1b[0m", false)

	want := []string{
		"Builder → Synthesizer [SYNC]\n  💬 wiped red",
		"⚡ Catalyst: done",
		"Error: boom",
	}
	got := s.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unit %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTruncateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "0123456789", 10, "0123456789"},
		{"long", "0123456789abc", 10, "0123456789..."},
		{"wide runes", "日本語テキスト", 6, "日本語..."},
		{"zero width disables", "anything", 0, "anything"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateContent(tt.content, tt.width); got != tt.want {
				t.Fatalf("TruncateContent(%q, %d) = %q, want %q", tt.content, tt.width, got, tt.want)
			}
		})
	}
}

func TestRenderTruncatesToWidth(t *testing.T) {
	s := plainSink(Options{})
	content := strings.Repeat("x", 300)
	s.Render(logparse.ConversationEvent{From: "A", To: "B", MessageType: "T", Content: content}, false)

	body := strings.SplitN(s.Lines()[0], "\n", 2)[1]
	want := "  💬 " + strings.Repeat("x", DefaultWidth) + "..."
	if body != want {
		t.Fatalf("body width = %d, want %d", len(body), len(want))
	}
}

func TestScrollbackIsBounded(t *testing.T) {
	s := plainSink(Options{Scrollback: 3})
	for i := 0; i < 10; i++ {
		s.Notice(strings.Repeat("n", i+1))
	}
	lines := s.Lines()
	if len(lines) != 3 || lines[0] != "nnnnnnnn" || lines[2] != "nnnnnnnnnn" {
		t.Fatalf("Lines() = %q, want last three notices", lines)
	}
}

func TestOutReceivesUnits(t *testing.T) {
	var buf bytes.Buffer
	s := plainSink(Options{Out: &buf})
	s.Render(logparse.StatusEvent{Agent: "Builder", Status: "ok"}, false)
	s.Render(logparse.StatusEvent{Agent: "Builder", Status: "dropped"}, true)
	s.Notice("done")

	if got, want := buf.String(), "⚡ Builder: ok\ndone\n"; got != want {
		t.Fatalf("Out = %q, want %q", got, want)
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v", s.Err())
	}
}

func TestStatsLine(t *testing.T) {
	s := plainSink(Options{})
	snap := stats.Snapshot{Count: 7, Unmatched: 4, Elapsed: 3500 * time.Millisecond, Rate: 2}
	s.Stats(snap, false)
	s.Stats(snap, true)
	lines := s.Lines()
	if lines[0] != "📊 7 messages | 3s elapsed | 2 msg/s" {
		t.Fatalf("stats unit = %q", lines[0])
	}
	if lines[1] != "📊 7 messages | 3s elapsed | 2 msg/s | 4 unmatched" {
		t.Fatalf("debug stats unit = %q", lines[1])
	}
}

func TestHelpClearsAndShowsLegend(t *testing.T) {
	s := plainSink(Options{})
	s.Notice("old")
	s.Help()

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("Help should leave a single unit, got %d", len(lines))
	}
	help := lines[0]
	for _, want := range []string{
		"🤖 Agent Communication Live Viewer",
		"SPACE - Pause/Resume",
		"Builder      - Architecture & Core Systems",
		"Architect    - Microservices Design",
		"Adaptive Portfolio Constellation",
	} {
		if !strings.Contains(help, want) {
			t.Fatalf("help missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "SYSTEM") {
		t.Fatalf("help legend should skip members without a role:\n%s", help)
	}
}
