package ui

import (
	"fmt"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/render"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/supervisor"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/viewer"
)

type fakeProcess struct{ calls int }

func (p *fakeProcess) Terminate() error {
	p.calls++
	return nil
}

func newTestModel(t *testing.T) (Model, *fakeProcess) {
	t.Helper()
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	sink := render.New(roster.Default(), render.Options{Renderer: r})
	agg := stats.New(nil)
	proc := &fakeProcess{}
	ctrl := viewer.New(viewer.Options{Sink: sink, Stats: agg, Process: proc})
	m := New(Options{Controller: ctrl, Sink: sink, Stats: agg})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 10})
	return next.(Model), proc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// flush delivers the coalesced refresh that output actions schedule.
func flush(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, refreshMsg{})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func line(text string) actionMsg {
	return actionMsg{action: viewer.LineAction{Stream: viewer.Stdout, Text: text}}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

const conversation = "CONVERSATION LOG: [12:00:00] Builder -> Synthesizer (COORDINATION): Ready"

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q", got)
	}
}

func TestLinesAppearInViewport(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, line(conversation))
	if cmd == nil {
		t.Fatalf("line did not schedule a refresh")
	}
	m = flush(t, m)

	view := m.View()
	for _, want := range []string{"Builder → Synthesizer [COORDINATION]", "💬 Ready", "RUNNING", "1 messages"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPauseKeyTogglesMode(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.ctrl.Mode() != viewer.Paused {
		t.Fatalf("Mode = %v, want paused", m.ctrl.Mode())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("paused badge missing:\n%s", m.View())
	}

	m, _ = update(t, m, line(conversation))
	if got := m.stats.Snapshot().Count; got != 0 {
		t.Fatalf("Count = %d while paused", got)
	}
}

func TestQuitKeysEndProgram(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			m, proc := newTestModel(t)
			m, cmd := update(t, m, msg)
			if !isQuit(cmd) {
				t.Fatalf("%q did not quit", msg.String())
			}
			if proc.calls != 1 {
				t.Fatalf("Terminate called %d times", proc.calls)
			}
			if !strings.Contains(m.sink.Content(), "Goodbye") {
				t.Fatalf("farewell missing:\n%s", m.sink.Content())
			}

			_, cmd = update(t, m, runes("q"))
			if cmd != nil || proc.calls != 1 {
				t.Fatalf("input after shutdown was handled")
			}
		})
	}
}

func TestProducerExitQuits(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := update(t, m, actionMsg{action: viewer.ExitAction{Status: supervisor.ExitStatus{Code: 4}}})
	if !isQuit(cmd) {
		t.Fatalf("producer exit did not quit")
	}
	if m.ctrl.ExitCode() != 4 {
		t.Fatalf("ExitCode = %d, want 4", m.ctrl.ExitCode())
	}
}

func TestScrollingStopsFollowing(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < 30; i++ {
		m, _ = update(t, m, line(fmt.Sprintf("🤖 AGENT STATUS UPDATE: Builder: step %d", i)))
	}
	m = flush(t, m)
	if !m.follow || !m.viewport.AtBottom() {
		t.Fatalf("viewer should follow new output")
	}

	m, _ = update(t, m, runes("g"))
	if m.follow {
		t.Fatalf("follow still set after scrolling to top")
	}
	offset := m.viewport.YOffset
	m, _ = update(t, m, line("🤖 AGENT STATUS UPDATE: Builder: late"))
	m = flush(t, m)
	if m.viewport.YOffset != offset {
		t.Fatalf("viewport moved while scrolled back")
	}
	if !strings.Contains(m.View(), "scrolled") {
		t.Fatalf("scrolled marker missing")
	}

	m, _ = update(t, m, runes("G"))
	if !m.follow || !m.viewport.AtBottom() {
		t.Fatalf("G did not resume following")
	}
}

func TestHelpKeyShowsLegend(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, line(conversation))
	m, _ = update(t, m, runes("h"))

	if !strings.Contains(m.View(), "Controls:") {
		t.Fatalf("help not shown:\n%s", m.View())
	}
	if m.viewport.YOffset != 0 {
		t.Fatalf("help should be shown from the top, YOffset = %d", m.viewport.YOffset)
	}
}

func TestOutputRefreshesAreCoalesced(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := update(t, m, line(conversation))
	if cmd == nil {
		t.Fatalf("first line did not schedule a refresh")
	}
	for i := 0; i < 10; i++ {
		var next tea.Cmd
		m, next = update(t, m, line(conversation))
		if next != nil {
			t.Fatalf("line %d scheduled a second refresh", i)
		}
	}
	if strings.Contains(m.View(), "Ready") {
		t.Fatalf("viewport refreshed before the scheduled refresh")
	}

	m = flush(t, m)
	if !strings.Contains(m.View(), "Ready") {
		t.Fatalf("refresh did not copy pending output:\n%s", m.View())
	}
	if _, cmd = update(t, m, line("booting...")); cmd != nil {
		t.Fatalf("unrendered line scheduled a refresh")
	}
	if _, cmd = update(t, m, line(conversation)); cmd == nil {
		t.Fatalf("refresh was not rearmed after flushing")
	}
}
