package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claudebuildsapps/project-constellation-sub002/internal/logparse"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/render"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/stats"
	"github.com/claudebuildsapps/project-constellation-sub002/internal/supervisor"
)

const (
	pausedNotice   = "⏸️  PAUSED"
	resumedNotice  = "▶️  RESUMED"
	farewellNotice = "👋 Goodbye! Agents continue working..."
)

// Terminator stops the producer. Terminate must be idempotent.
type Terminator interface {
	Terminate() error
}

// Options configure a Controller.
type Options struct {
	Sink    *render.Sink
	Stats   *stats.Aggregator
	Process Terminator
	Logger  *slog.Logger
	// Debug includes the unmatched line count in stats lines and logs each
	// unmatched line.
	Debug bool
	// ShowHelpOnStart shows the help screen when Start is called.
	ShowHelpOnStart bool
}

// State is the controller's view of the session.
type State struct {
	Mode         Mode
	LastRendered logparse.Event
}

// Paused reports whether rendering is suspended.
func (s State) Paused() bool { return s.Mode == Paused }

// Controller owns the viewer state and reacts to actions. All methods must be
// called from the single goroutine that consumes the action stream.
type Controller struct {
	sink  *render.Sink
	stats *stats.Aggregator
	proc  Terminator
	log   *slog.Logger
	debug bool
	help  bool

	state    State
	exitCode int
	epilogue []string
}

// New builds a controller in the Running state.
func New(opts Options) *Controller {
	if opts.Sink == nil {
		opts.Sink = render.New(nil, render.Options{})
	}
	if opts.Stats == nil {
		opts.Stats = stats.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		sink:  opts.Sink,
		stats: opts.Stats,
		proc:  opts.Process,
		log:   opts.Logger,
		debug: opts.Debug,
		help:  opts.ShowHelpOnStart,
		state: State{Mode: Running},
	}
}

// Start shows the initial screen.
func (c *Controller) Start() {
	if c.help {
		c.sink.Help()
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.state.Mode }

// ExitCode is the code the viewer should exit with once shut down: the
// producer's code when it exited first, otherwise 0.
func (c *Controller) ExitCode() int { return c.exitCode }

// Handle applies one action and reports whether the session is over.
// Actions arriving after shutdown are ignored.
func (c *Controller) Handle(a Action) bool {
	if c.state.Mode == ShuttingDown {
		return true
	}

	switch a := a.(type) {
	case LineAction:
		c.handleLine(a)
	case KeyAction:
		c.handleCommand(a.Command)
	case TickAction:
		if c.state.Mode == Running {
			c.sink.Stats(c.stats.Snapshot(), c.debug)
		}
	case ExitAction:
		c.log.Info("producer exited", "code", a.Status.Code, "signal", a.Status.Signal)
		c.closing(fmt.Sprintf("Agent communication system exited with code %d", a.Status.Code), false)
		c.shutdown(a.Status.Code)
	}
	return c.state.Mode == ShuttingDown
}

func (c *Controller) handleLine(a LineAction) {
	paused := c.state.Paused()
	if a.Stream == Stderr {
		c.sink.RenderError(a.Text, paused)
		return
	}

	ev, ok := logparse.Parse(a.Text)
	if !ok {
		c.stats.RecordUnmatched()
		if c.debug {
			c.log.Debug("unmatched line", "line", a.Text)
		}
		return
	}
	if !c.sink.Render(ev, paused) {
		return
	}
	c.state.LastRendered = ev

	switch e := ev.(type) {
	case logparse.ConversationEvent:
		c.stats.RecordMessage()
		c.stats.RecordConversation(e.From, e.To)
	case logparse.StatusEvent:
		c.stats.RecordStatus(e.Agent, e.Status)
	}
}

func (c *Controller) handleCommand(cmd Command) {
	c.log.Debug("command", "command", cmd.String(), "mode", c.state.Mode.String())

	switch cmd {
	case TogglePause:
		if c.state.Mode == Paused {
			c.state.Mode = Running
			c.sink.Notice(resumedNotice)
		} else {
			c.state.Mode = Paused
			c.sink.Notice(pausedNotice)
		}
	case ShowStats:
		c.sink.Stats(c.stats.Snapshot(), c.debug)
	case ShowHelp:
		c.sink.Help()
	case Quit, Interrupt:
		c.shutdown(0)
	}
}

func (c *Controller) shutdown(code int) {
	c.state.Mode = ShuttingDown
	c.exitCode = code

	if c.proc != nil {
		if err := c.proc.Terminate(); err != nil {
			c.log.Warn("terminate producer", "error", err)
			if errors.Is(err, supervisor.ErrTerminationTimeout) {
				c.closing("⚠️  Agent communication system did not stop in time", true)
			} else {
				c.closing("⚠️  Could not stop agent communication system: "+err.Error(), true)
			}
		}
	}
	c.closing(farewellNotice, false)
}

func (c *Controller) closing(text string, warn bool) {
	if warn {
		c.sink.Warn(text)
	} else {
		c.sink.Notice(text)
	}
	c.epilogue = append(c.epilogue, text)
}

// Epilogue returns the plain-text notices emitted while shutting down, for
// front ends that clear the screen on exit.
func (c *Controller) Epilogue() []string {
	out := make([]string, len(c.epilogue))
	copy(out, c.epilogue)
	return out
}

// Run consumes src until the session ends and returns the exit code. It is
// the loop used when there is no interactive front end. Cancelling ctx is
// treated as an interrupt.
func (c *Controller) Run(ctx context.Context, src Sources) int {
	mctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	actions := Merge(mctx, src)

	c.Start()
	for {
		select {
		case <-ctx.Done():
			c.Handle(KeyAction{Command: Interrupt})
			return c.exitCode
		case a, ok := <-actions:
			if !ok {
				return c.exitCode
			}
			if c.Handle(a) {
				return c.exitCode
			}
		}
	}
}
