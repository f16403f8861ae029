package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/render"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/theme"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/viewer"
)

const title = "🤖 Agent Communication Live Viewer"

// refreshInterval bounds how often producer output is copied into the
// viewport.
const refreshInterval = 50 * time.Millisecond

// Options configures the UI.
type Options struct {
	Controller *viewer.Controller
	Sink       *render.Sink
	Stats      *stats.Aggregator
	// Sources feed the controller. Keys is ignored; the UI reads the
	// keyboard itself.
	Sources viewer.Sources
	Logger  *slog.Logger
}

// actionMsg carries a merged viewer action into the Bubble Tea loop.
type actionMsg struct {
	action viewer.Action
}

// refreshMsg asks the model to copy pending sink output into the viewport.
type refreshMsg struct{}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctrl   *viewer.Controller
	sink   *render.Sink
	stats  *stats.Aggregator
	styles theme.Styles
	keys   keyMap
	help   help.Model

	viewport viewport.Model
	width    int
	height   int
	ready    bool
	follow   bool
	rendered uint64
	pending  bool
	done     bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	if opts.Sink == nil {
		opts.Sink = render.New(nil, render.Options{})
	}
	if opts.Stats == nil {
		opts.Stats = stats.New(nil)
	}
	if opts.Controller == nil {
		opts.Controller = viewer.New(viewer.Options{Sink: opts.Sink, Stats: opts.Stats, Logger: opts.Logger})
	}
	return Model{
		ctrl:   opts.Controller,
		sink:   opts.Sink,
		stats:  opts.Stats,
		styles: opts.Sink.Styles(),
		keys:   DefaultKeyMap(),
		help:   help.New(),
		follow: true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.rendered = 0
		m.sync()
		return m, nil

	case actionMsg:
		return m.dispatch(msg.action)

	case refreshMsg:
		m.pending = false
		m.sync()
		return m, nil
	}
	return m, nil
}

// dispatch hands an action to the controller. Key commands refresh the
// viewport at once; producer output and ticks are coalesced into one
// refresh per interval.
func (m Model) dispatch(a viewer.Action) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	if m.ctrl.Handle(a) {
		m.done = true
		m.sync()
		return m, tea.Quit
	}

	ka, isKey := a.(viewer.KeyAction)
	if !isKey {
		if m.pending || m.sink.Version() == m.rendered {
			return m, nil
		}
		m.pending = true
		return m, refreshCmd()
	}
	m.sync()
	if ka.Command == viewer.ShowHelp {
		m.viewport.GotoTop()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.keys.command(msg); ok {
		return m.dispatch(viewer.KeyAction{Command: cmd})
	}
	if !m.ready {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	default:
		return m, nil
	}
	// Scrolling back to the end resumes following new output.
	m.follow = m.viewport.AtBottom()
	return m, nil
}

// resize fits the viewport between the header and footer lines.
func (m *Model) resize() {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, h)
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

// sync copies the sink's units into the viewport when they changed.
func (m *Model) sync() {
	if !m.ready {
		return
	}
	if v := m.sink.Version(); m.rendered == 0 || v != m.rendered {
		m.viewport.SetContent(m.sink.Content())
		m.rendered = v
	}
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	mode := m.ctrl.Mode().String()
	parts := []string{
		m.styles.Title.Render(title),
		m.styles.ModeBadge(mode).Render(strings.ToUpper(mode)),
		m.styles.SuccessText.Render(fmt.Sprintf("%d messages", m.stats.Snapshot().Count)),
	}
	if !m.follow {
		parts = append(parts, m.styles.FaintText.Render("scrolled"))
	}
	return m.styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	m.help.Width = m.width
	return m.styles.Footer.MaxHeight(1).Render(m.help.View(m.keys))
}

// Run starts the Bubble Tea program and feeds it the merged sources until the
// session ends. Cancelling ctx is delivered as an interrupt. It returns the
// controller's exit code.
func Run(ctx context.Context, opts Options) (int, error) {
	m := New(opts)
	m.ctrl.Start()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithoutSignalHandler())

	fctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := opts.Sources
	src.Keys = nil
	go forward(ctx, fctx, p, src)

	if _, err := p.Run(); err != nil {
		return m.ctrl.ExitCode(), fmt.Errorf("run terminal ui: %w", err)
	}
	return m.ctrl.ExitCode(), nil
}

// forward pumps merged actions into the program. It stops when fctx ends
// or, after sending an interrupt, when ctx is cancelled.
func forward(ctx, fctx context.Context, p *tea.Program, src viewer.Sources) {
	actions := viewer.Merge(fctx, src)
	for {
		select {
		case <-fctx.Done():
			return
		case <-ctx.Done():
			p.Send(actionMsg{action: viewer.KeyAction{Command: viewer.Interrupt}})
			return
		case a, ok := <-actions:
			if !ok {
				return
			}
			p.Send(actionMsg{action: a})
		}
	}
}
