package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/config"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/render"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/roster"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/supervisor"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/theme"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/ui"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/viewer"
)

// Color modes accepted by Options.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options configure a viewer session. Zero values defer to the config file.
type Options struct {
	ConfigPath string
	// Command replaces the configured producer argv when non-empty.
	Command       []string
	Plain         bool
	Color         string
	StatsInterval time.Duration
	Debug         bool
	LogFile       string
	NoSummary     bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run loads configuration, starts the producer and runs the viewer until the
// session ends. It returns the process exit code; a non-nil error means the
// session never started.
func Run(ctx context.Context, opts Options) (int, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Color == "" {
		opts.Color = ColorAuto
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return 1, fmt.Errorf("load config: %w", err)
	}
	applyFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return 1, fmt.Errorf("invalid config: %w", err)
	}

	tui := !opts.Plain && isTerminal(opts.Stdin) && isTerminal(opts.Stdout)
	renderer, err := newRenderer(opts.Stdout, opts.Color, tui)
	if err != nil {
		return 1, err
	}

	logger, closeLog, err := newLogger(cfg, opts.Stderr, tui)
	if err != nil {
		return 1, err
	}
	defer closeLog()
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	}

	cmd := supervisor.Command{
		Name: cfg.Command[0],
		Args: cfg.Command[1:],
		Dir:  cfg.Dir,
	}
	if !tui && cfg.InheritStdin {
		cmd.Stdin = opts.Stdin
	}
	proc, err := supervisor.Spawn(cmd,
		supervisor.WithGrace(cfg.TerminateTimeout),
		supervisor.WithLogger(logger),
	)
	if err != nil {
		return 1, fmt.Errorf("start producer: %w", err)
	}
	defer proc.Terminate()

	th, _ := theme.Get(cfg.Theme)
	sinkOpts := render.Options{
		Width:      cfg.ContentWidth,
		Scrollback: cfg.Scrollback,
		Renderer:   renderer,
		Theme:      th,
	}
	if !tui {
		sinkOpts.Out = opts.Stdout
	}
	sink := render.New(roster.New(roster.DefaultMembers(), cfg.Colors), sinkOpts)
	agg := stats.New(nil)
	ctrl := viewer.New(viewer.Options{
		Sink:            sink,
		Stats:           agg,
		Process:         proc,
		Logger:          logger,
		Debug:           cfg.Debug,
		ShowHelpOnStart: tui,
	})

	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	src := viewer.Sources{
		Lines:  proc.Stdout(),
		Errors: proc.Stderr(),
		Ticks:  StartTicker(tickCtx, cfg.StatsInterval),
		Exit:   proc.Exit(),
	}

	var code int
	if tui {
		code, err = ui.Run(ctx, ui.Options{
			Controller: ctrl,
			Sink:       sink,
			Stats:      agg,
			Sources:    src,
			Logger:     logger,
		})
		if err != nil {
			return 1, err
		}
		for _, line := range ctrl.Epilogue() {
			fmt.Fprintln(opts.Stdout, line)
		}
	} else {
		code = ctrl.Run(ctx, src)
		if err := sink.Err(); err != nil {
			logger.Warn("write output", "error", err)
		}
	}

	if cfg.Summary {
		if err := stats.WriteSummary(opts.Stdout, agg.Snapshot(), agg.Tallies()); err != nil {
			logger.Warn("write summary", "error", err)
		}
	}
	return code, nil
}

func applyFlags(cfg *config.Config, opts Options) {
	if len(opts.Command) > 0 {
		cfg.Command = opts.Command
	}
	if opts.StatsInterval > 0 {
		cfg.StatsInterval = opts.StatsInterval
	}
	if opts.Debug {
		cfg.Debug = true
		cfg.LogLevel = slog.LevelDebug
	}
	if strings.TrimSpace(opts.LogFile) != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.NoSummary {
		cfg.Summary = false
	}
}

// newRenderer picks the color profile for the sink. In auto mode the TUI
// uses the default renderer and plain output detects from w.
func newRenderer(w io.Writer, mode string, tui bool) (*lipgloss.Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ColorAuto:
		if tui {
			return lipgloss.DefaultRenderer(), nil
		}
		return lipgloss.NewRenderer(w), nil
	case ColorAlways:
		r := lipgloss.NewRenderer(w)
		if r.ColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
		return r, nil
	case ColorNever:
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.Ascii)
		return r, nil
	default:
		return nil, fmt.Errorf("invalid color mode %q (want %s, %s or %s)", mode, ColorAuto, ColorAlways, ColorNever)
	}
}

// newLogger writes to the configured log file when set. Otherwise records
// go to stderr in plain mode and are discarded under the TUI, which owns
// the screen.
func newLogger(cfg config.Config, stderr io.Writer, tui bool) (*slog.Logger, func(), error) {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, handlerOpts)), func() { _ = f.Close() }, nil
	}
	if tui {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	return slog.New(slog.NewTextHandler(stderr, handlerOpts)), func() {}, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
